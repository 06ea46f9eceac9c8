package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/wikistruct/internal/entity"
	"github.com/dgallion1/wikistruct/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type collectRequest struct {
	Kind   string   `json:"kind"`
	Titles []string `json:"titles"`
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	kind, err := s.resolveKind(req.Kind)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Titles) == 0 {
		jsonError(w, "at least one title is required", http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(kind, pipeline.ModeCollect, req.Titles)
	s.submit(w, job)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	kind, err := s.resolveKind(req.Kind)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Empty titles means rebuild every archived page.
	job := pipeline.NewJob(kind, pipeline.ModeRebuild, req.Titles)
	s.submit(w, job)
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"mode":     job.Mode,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/collect/%s/status", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" {
		if _, err := s.resolveKind(kind); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	entities, err := s.orchestrator.EntityStore().ListEntities(r.Context(), kind)
	if err != nil {
		s.log.Error("list entities failed", "error", err)
		jsonError(w, "list failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"entities": entities})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := chi.URLParam(r, "name")

	record, revision, err := s.orchestrator.EntityStore().GetEntity(r.Context(), kind, name)
	if err != nil {
		s.log.Error("get entity failed", "kind", kind, "name", name, "error", err)
		jsonError(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if record == nil {
		jsonError(w, "entity not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"kind":     kind,
		"name":     name,
		"revision": revision,
		"record":   json.RawMessage(record),
	})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := chi.URLParam(r, "name")

	deleted, err := s.orchestrator.EntityStore().DeleteEntity(r.Context(), kind, name)
	if err != nil {
		s.log.Error("delete entity failed", "kind", kind, "name", name, "error", err)
		jsonError(w, "delete failed", http.StatusInternalServerError)
		return
	}
	if !deleted {
		jsonError(w, "entity not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": true})
}

// resolveKind checks a request kind against the active specs.
func (s *Server) resolveKind(raw string) (entity.Kind, error) {
	if raw == "" {
		return "", fmt.Errorf("kind is required")
	}
	kind := entity.Kind(raw)
	if _, ok := s.orchestrator.Specs()[kind]; !ok {
		return "", fmt.Errorf("unknown kind: %s", raw)
	}
	return kind, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
