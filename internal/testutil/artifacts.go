package testutil

import (
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/fundwallet/fundwallet-backend/internal/codec"
)

// DataURL is the base artifact URL used by mock-fetcher tests.
const DataURL = "https://cdn.example.test/data.b64"

// NewTestCodec returns a codec using the default key.
func NewTestCodec(t *testing.T) *codec.Codec {
	t.Helper()
	c, err := codec.New(codec.DefaultKey)
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}
	return c
}

// EncodeArtifacts encodes a JSON document into n artifacts with the default key.
func EncodeArtifacts(t *testing.T, raw []byte, n int) [][]byte {
	t.Helper()
	artifacts, err := NewTestCodec(t).EncodeRaw(raw, n)
	if err != nil {
		t.Fatalf("Failed to encode artifacts: %v", err)
	}
	return artifacts
}

// ArtifactURLs returns the URLs the pipeline fetches for base in n-chunk mode.
func ArtifactURLs(base string, n int) []string {
	if n <= 1 {
		return []string{base}
	}
	urls := make([]string, n)
	for i := range urls {
		urls[i] = codec.ChunkName(base, i+1)
	}
	return urls
}

// ServeArtifacts registers artifacts on m under the URLs derived from base.
func (m *MockFetcher) ServeArtifacts(base string, artifacts [][]byte) *MockFetcher {
	for i, url := range ArtifactURLs(base, len(artifacts)) {
		m.WithArtifact(url, artifacts[i])
	}
	return m
}

// ArtifactServer is an httptest server that serves encoded artifacts by file name.
type ArtifactServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

// NewArtifactServer starts a server; it is closed when the test ends.
func NewArtifactServer(t *testing.T) *ArtifactServer {
	t.Helper()
	s := &ArtifactServer{files: make(map[string][]byte), hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Publish encodes raw into n artifacts and serves them as name (or its chunk names).
func (s *ArtifactServer) Publish(t *testing.T, name string, raw []byte, n int) {
	t.Helper()
	artifacts := EncodeArtifacts(t, raw, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, file := range ArtifactURLs(name, n) {
		s.files[file] = artifacts[i]
	}
}

// FileURL returns the absolute URL of name.
func (s *ArtifactServer) FileURL(name string) string {
	return s.Server.URL + "/" + name
}

// Hits returns how many times name was requested.
func (s *ArtifactServer) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}

func (s *ArtifactServer) serve(w http.ResponseWriter, r *http.Request) {
	name := path.Base(strings.TrimPrefix(r.URL.Path, "/"))
	s.mu.Lock()
	s.hits[name]++
	data, ok := s.files[name]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write(data)
}
