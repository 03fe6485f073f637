// File path: internal/api/handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/snvbench/benchdb/internal/bench"
	"github.com/snvbench/benchdb/internal/common"
	"github.com/snvbench/benchdb/internal/ingest"
)

// handleUpload accepts a multipart form with a "file" part (the hap.py CSV)
// and a "metadata" part (the experiment record as JSON).
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	const maxMemory = 64 << 20 // 64 MiB of in-memory file parts
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var meta bench.Metadata
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse metadata: %w", err))
			return
		}
	} else {
		writeError(w, http.StatusBadRequest, fmt.Errorf("metadata part is required"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file part is required: %w", err))
		return
	}
	defer file.Close()

	p := principal(r)
	if meta.OwnerUsername == "" {
		meta.OwnerUsername = p.Username
	}
	if meta.OwnerID == nil {
		meta.OwnerID = p.UserID
	}

	req := ingest.UploadRequest{Metadata: meta, File: file}
	if raw := strings.TrimSpace(r.FormValue("experiment_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse experiment_id: %w", err))
			return
		}
		req.RequestedID = &id
	}

	result, err := s.orchestrator.Upload(r.Context(), req)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	logger.Info("api: upload accepted", "experiment_id", result.ExperimentID)
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	details, err := s.store.ListExperiments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"experiments": details,
		"count":       len(details),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	detail, err := s.store.GetExperiment(r.Context(), id)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.store.GetExperiment(r.Context(), id); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	overall, err := s.store.OverallResults(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	benchmark, err := s.store.BenchmarkResults(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"experiment_id": id,
		"overall":       overall,
		"benchmark":     benchmark,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.orchestrator.Delete(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		IsPublic *bool `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse body: %w", err))
		return
	}
	if req.IsPublic == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("is_public is required"))
		return
	}
	if err := s.orchestrator.SetVisibility(r.Context(), principal(r), id, *req.IsPublic); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"experiment_id": id,
		"is_public":     *req.IsPublic,
	})
}

// handleRegions lists the region codes with their display names, the set the
// dashboard offers as stratification filters.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	type regionInfo struct {
		Code        string `json:"code"`
		DisplayName string `json:"display_name"`
	}
	regions := bench.Regions()
	out := make([]regionInfo, 0, len(regions))
	for _, region := range regions {
		out = append(out, regionInfo{Code: string(region), DisplayName: region.DisplayName()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"regions": out})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid experiment id %q", raw)
	}
	return id, nil
}
