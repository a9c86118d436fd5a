package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/banshee-data/multitrack/api"
	"github.com/banshee-data/multitrack/internal/config"
	"github.com/banshee-data/multitrack/internal/multitrack"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	tracksFile = flag.String("tracks", "", "Track layout JSON file applied at startup")
)

// logDriver is the parameter sink used when running without a camera driver:
// it hands out sequential handles and echoes every derived-array update to
// the process log.
type logDriver struct {
	names map[int]string
}

func (d *logDriver) CreateParam(name string) (int, error) {
	handle := len(d.names) + 1
	d.names[handle] = name
	return handle, nil
}

func (d *logDriver) PostInt32Array(param int, values []int, offset int) {
	log.Printf("param %s updated: %v", d.names[param], values)
}

func main() {
	flag.Parse()

	mt, err := multitrack.New(&logDriver{names: make(map[int]string)})
	if err != nil {
		log.Fatalf("failed to create track configurator: %v", err)
	}

	if *tracksFile != "" {
		layout, err := config.LoadTrackLayout(*tracksFile)
		if err != nil {
			log.Fatalf("failed to load track layout: %v", err)
		}
		if err := layout.Apply(mt); err != nil {
			log.Fatalf("failed to apply track layout: %v", err)
		}
		log.Printf("applied %d tracks from %s (total data height %d)",
			mt.TrackCount(), *tracksFile, mt.TotalDataHeight())
	}

	server := api.NewServer(mt)
	log.Printf("multitrack server listening on %s", *listen)
	if err := http.ListenAndServe(*listen, api.LoggingMiddleware(server.ServeMux())); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
