// Package api implements the development HTTP surface of the serve
// command: health, version and loaded-dataset metadata. The production LOD
// streaming endpoints live in an external service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banshee-data/lodstream/internal/storage"
	"github.com/banshee-data/lodstream/internal/version"
)

// MetadataStore is the slice of the storage collaborator the server reads.
type MetadataStore interface {
	ListPointclouds(ctx context.Context) ([]storage.PointcloudMetadata, error)
	ListLoads(ctx context.Context) ([]storage.LoadRecord, error)
}

// Server serves the lodstream development API.
type Server struct {
	store MetadataStore
}

// NewServer creates an API server over the given store.
func NewServer(store MetadataStore) *Server {
	return &Server{store: store}
}

// ServeMux returns the handler tree: /health, /version, /pointclouds.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/version", s.versionHandler)
	mux.HandleFunc("/pointclouds", s.listPointclouds)
	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

// pointcloudListing is the /pointclouds response: current metadata plus the
// load journal.
type pointcloudListing struct {
	Pointclouds []storage.PointcloudMetadata `json:"pointclouds"`
	Loads       []storage.LoadRecord         `json:"loads"`
}

func (s *Server) listPointclouds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	clouds, err := s.store.ListPointclouds(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list pointclouds: %v", err), http.StatusInternalServerError)
		return
	}
	loads, err := s.store.ListLoads(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list loads: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, pointcloudListing{Pointclouds: clouds, Loads: loads})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
