// Package api exposes the multi-track readout configuration over HTTP so a
// track layout can be inspected and rewritten at runtime.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/multitrack/internal/multitrack"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serialises HTTP writes into the track configurator. The configurator
// itself is single-threaded; the server's mutex is the per-port lock the
// driver layer would otherwise hold.
type Server struct {
	mu sync.Mutex
	mt *multitrack.MultiTrack
}

func NewServer(mt *multitrack.MultiTrack) *Server {
	return &Server{mt: mt}
}

// TrackInfo is the per-track slice of the geometry document.
type TrackInfo struct {
	Start      int `json:"start"`
	End        int `json:"end"`
	Bin        int `json:"bin"`
	Height     int `json:"height"`
	DataHeight int `json:"data_height"`
}

// TrackGeometry is the full derived geometry returned by /api/tracks.
type TrackGeometry struct {
	Count           int         `json:"count"`
	Tracks          []TrackInfo `json:"tracks"`
	TotalDataHeight int         `json:"total_data_height"`
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the MultiTrack Server!"))
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/api/tracks", s.showTracks)
	mux.HandleFunc("/api/tracks/start", s.writeArrayHandler(s.mt.StartParam()))
	mux.HandleFunc("/api/tracks/end", s.writeArrayHandler(s.mt.EndParam()))
	mux.HandleFunc("/api/tracks/bin", s.writeArrayHandler(s.mt.BinParam()))
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// geometry builds the derived geometry document. Callers hold s.mu.
func (s *Server) geometry() TrackGeometry {
	count := s.mt.TrackCount()
	geom := TrackGeometry{
		Count:           count,
		Tracks:          make([]TrackInfo, count),
		TotalDataHeight: s.mt.TotalDataHeight(),
	}
	for i := 0; i < count; i++ {
		// Index errors cannot occur inside [0, count).
		start, _ := s.mt.TrackStart(i)
		end, _ := s.mt.TrackEnd(i)
		bin, _ := s.mt.TrackBin(i)
		height, _ := s.mt.TrackHeight(i)
		dataHeight, _ := s.mt.DataHeight(i)
		geom.Tracks[i] = TrackInfo{
			Start:      start,
			End:        end,
			Bin:        bin,
			Height:     height,
			DataHeight: dataHeight,
		}
	}
	return geom
}

func (s *Server) showTracks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.mu.Lock()
	geom := s.geometry()
	s.mu.Unlock()

	if err := json.NewEncoder(w).Encode(geom); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write geometry")
		return
	}
}

// writeArrayHandler returns a handler that routes a posted integer array to
// the configurator parameter identified by function.
func (s *Server) writeArrayHandler(function int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var values []int
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "Request body must be a JSON integer array")
			return
		}

		s.mu.Lock()
		err := s.mt.Write(function, values)
		geom := s.geometry()
		s.mu.Unlock()

		if err != nil {
			var verr *multitrack.ValidationError
			if errors.As(err, &verr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(map[string]string{
					"error": verr.Message,
					"kind":  verr.Kind.String(),
				})
				return
			}
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if err := json.NewEncoder(w).Encode(geom); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write geometry")
			return
		}
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
