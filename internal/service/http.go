package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"mason.gg/internal/api"
)

const maxBodyBytes = 4 << 20

// Register mounts the REST surface on mux. The watch socket is the
// hub's handler; everything else answers JSON.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/build", s.handleBuild)
	mux.HandleFunc("/v1/compile", s.handleCompile)
	mux.HandleFunc("/v1/validate", s.handleValidate)
	mux.HandleFunc("/v1/templates", s.handleTemplates)
	mux.HandleFunc("/v1/builds", s.handleBuilds)
	mux.HandleFunc("/v1/builds/", s.handleBuildDetail)
	mux.HandleFunc("/v1/watch", s.hub.Handler())
}

func (s *Service) handleBuild(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req api.BuildRequest
	if err := readJSON(r, &req); err != nil {
		writeError(rw, err)
		return
	}
	acc, err := s.Build(r.Context(), req)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusAccepted, acc)
}

func (s *Service) handleCompile(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req api.CompileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(rw, err)
		return
	}
	resp, err := s.Compile(r.Context(), req)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, resp)
}

// handleValidate audits either raw command text or a compilable
// source, whichever the body carries. Commands win when both appear.
func (s *Service) handleValidate(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		api.CompileRequest
		Commands []string `json:"commands"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(rw, err)
		return
	}
	if len(req.Commands) > 0 {
		writeJSON(rw, http.StatusOK, s.ValidateCommands(req.Commands))
		return
	}
	resp, err := s.Compile(r.Context(), req.CompileRequest)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, api.ValidateResponse{Checked: resp.Count, Violations: resp.Violations})
}

func (s *Service) handleTemplates(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(rw, http.StatusOK, s.Templates())
}

func (s *Service) handleBuilds(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(rw, api.Errorf(api.ErrBadRequest, "bad limit %q", q))
			return
		}
		limit = n
	}
	resp, err := s.Builds(r.Context(), limit)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, resp)
}

func (s *Service) handleBuildDetail(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/builds/")
	if id == "" || strings.Contains(id, "/") {
		writeError(rw, api.Errorf(api.ErrNotFound, "no build at %s", r.URL.Path))
		return
	}
	detail, err := s.BuildDetail(r.Context(), id)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, detail)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return api.Errorf(api.ErrBadRequest, "decode request: %v", err)
	}
	return nil
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, err error) {
	code := api.CodeOf(err)
	writeJSON(rw, httpStatus(code), api.NewError(code, api.MessageOf(err)))
}

func httpStatus(code string) int {
	switch code {
	case api.ErrNotFound:
		return http.StatusNotFound
	case api.ErrRateLimit:
		return http.StatusTooManyRequests
	case api.ErrRconUnavailable:
		return http.StatusServiceUnavailable
	case api.ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
