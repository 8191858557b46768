package build

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestFetchRequestsVersionedArchive(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	fetcher := NewFetcher(WithBaseURL(server.URL))
	dest := t.TempDir()

	path, err := fetcher.Fetch(context.Background(), "3.12.1", dest)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if gotPath != "/3.12.1/Python-3.12.1.tgz" {
		t.Errorf("unexpected request path %s", gotPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if string(data) != "archive-bytes" {
		t.Errorf("archive content mismatch: %q", data)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	fetcher := NewFetcher(WithBaseURL(server.URL))
	if _, err := fetcher.Fetch(context.Background(), "9.9.9", t.TempDir()); err == nil {
		t.Fatal("expected error for missing archive")
	}
}
