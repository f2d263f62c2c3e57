package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "rrsim API",
		Version:     "v1",
		Description: "Multi-core preemptive round-robin scheduling simulator",
		Endpoints: []endpointInfo{
			{"/api/v1/sessions", []string{"GET", "POST"}, "Live simulation sessions. POST accepts optional {name, quantum, cores}"},
			{"/api/v1/sessions/{id}", []string{"GET", "DELETE"}, "Session snapshot: clock, processes, cores, ready queue, timeline"},
			{"/api/v1/sessions/{id}/processes", []string{"POST"}, "Register a process {arrival, burst}"},
			{"/api/v1/sessions/{id}/config", []string{"PUT"}, "Set {quantum, cores}"},
			{"/api/v1/sessions/{id}/start", []string{"POST"}, "Begin a run"},
			{"/api/v1/sessions/{id}/step", []string{"POST"}, "Execute one tick"},
			{"/api/v1/sessions/{id}/run", []string{"POST"}, "Run to completion"},
			{"/api/v1/sessions/{id}/reset", []string{"POST"}, "Drop processes and run state"},
			{"/api/v1/sessions/{id}/metrics", []string{"GET"}, "Final metrics of a finished run"},
			{"/api/v1/sessions/{id}/play", []string{"GET"}, "SSE playback. ?delay=200ms or ?speed=0.5"},
			{"/api/v1/runs", []string{"GET"}, "Archived runs, newest first. ?limit, ?offset, ?name"},
			{"/api/v1/runs/{id}", []string{"GET"}, "Archived run with processes and timeline"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
