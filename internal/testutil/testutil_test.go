package testutil

import (
	"errors"
	"net/http"
	"testing"
)

// The failure paths of the Assert helpers would need a mock testing.T to
// exercise directly; they are validated through the api package tests where
// they are actually used.

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("test error"))
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodGet, "/api/tracks")
	if req.Method != http.MethodGet {
		t.Errorf("method = %q, want %q", req.Method, http.MethodGet)
	}
	if req.URL.Path != "/api/tracks" {
		t.Errorf("path = %q, want %q", req.URL.Path, "/api/tracks")
	}
}

func TestNewJSONRequestRoundTrip(t *testing.T) {
	t.Parallel()

	req := NewJSONRequest(t, http.MethodPost, "/api/tracks/start", []int{1, 10})
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q, want application/json", got)
	}

	rec := NewTestRecorder()
	// Echo the body back through the recorder to exercise DecodeJSON.
	if _, err := rec.Body.ReadFrom(req.Body); err != nil {
		t.Fatalf("failed to copy request body: %v", err)
	}

	var values []int
	DecodeJSON(t, rec, &values)
	if len(values) != 2 || values[0] != 1 || values[1] != 10 {
		t.Errorf("decoded values = %v, want [1 10]", values)
	}
}
