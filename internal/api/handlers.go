package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-engine/internal/engine"
	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/profile"
	"github.com/sells-group/site-engine/internal/store"
)

// errBadRequest marks request envelope problems that are the caller's fault.
var errBadRequest = eris.New("api: bad request")

// request is the envelope shared by the POST endpoints. Profile and
// Attributes stay raw so they can be schema-checked before decoding.
type request struct {
	Profile    json.RawMessage `json:"profile"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
	Industry   string          `json:"industry,omitempty"`
	Now        time.Time       `json:"now,omitzero"`
	Save       bool            `json:"save,omitempty"`
}

type decodedRequest struct {
	request
	profile    model.BusinessProfile
	attributes model.BusinessAttributes
}

type signalsResponse struct {
	Industry string                  `json:"industry"`
	Signals  model.NormalizedSignals `json:"signals"`
}

type qualityResponse struct {
	Industry string                 `json:"industry"`
	Quality  model.DataQualityScore `json:"quality"`
}

type listResponse struct {
	Generations []model.Generation `json:"generations"`
	Count       int                `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"registry": s.engine.Registry().Version,
		"store":    s.store != nil,
	}
	if loaded, at := s.engine.Cache().Loaded(); loaded {
		resp["benchmark_loaded_at"] = at.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	industry, err := s.industry(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sig, err := s.engine.Signals(req.profile, industry, req.Now)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signalsResponse{Industry: industry, Signals: sig})
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	industry, err := s.industry(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_, score, err := s.engine.Assess(req.profile, industry, req.Now)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.QualityScore.Observe(score.Total)
	writeJSON(w, http.StatusOK, qualityResponse{Industry: industry, Quality: score})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if req.Save && s.store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	attrs := req.attributes
	if req.Industry != "" {
		attrs.Industry = req.Industry
	}
	gen, err := s.engine.Generate(engine.Request{
		Profile:    req.profile,
		Attributes: attrs,
		Now:        req.Now,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ObserveGeneration(gen)

	status := http.StatusOK
	if req.Save {
		if err := s.store.SaveGeneration(r.Context(), gen); err != nil {
			s.fail(w, r, err)
			return
		}
		status = http.StatusCreated
	}
	writeJSON(w, status, gen)
}

func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}
	gen, err := s.store.GetGeneration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gen)
}

func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}
	q := r.URL.Query()
	filter := store.GenerationFilter{
		BusinessID: q.Get("business_id"),
		Industry:   q.Get("industry"),
		TemplateID: q.Get("template_id"),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		s.fail(w, r, eris.Wrap(errBadRequest, "limit must be a non-negative integer"))
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		s.fail(w, r, eris.Wrap(errBadRequest, "offset must be a non-negative integer"))
		return
	}

	gens, err := s.store.ListGenerations(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if gens == nil {
		gens = []model.Generation{}
	}
	writeJSON(w, http.StatusOK, listResponse{Generations: gens, Count: len(gens)})
}

// decode reads the envelope and schema-checks its documents. It writes the
// error response itself and reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (decodedRequest, bool) {
	var req decodedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req.request); err != nil {
		s.fail(w, r, eris.Wrapf(errBadRequest, "invalid request body: %v", err))
		return req, false
	}
	if isNull(req.Profile) {
		s.fail(w, r, eris.Wrap(errBadRequest, "profile is required"))
		return req, false
	}

	p, err := profile.Decode(req.Profile)
	if err != nil {
		s.metrics.InvalidInputs.Inc()
		s.fail(w, r, err)
		return req, false
	}
	req.profile = p

	if !isNull(req.Attributes) {
		a, err := profile.DecodeAttributes(req.Attributes)
		if err != nil {
			s.metrics.InvalidInputs.Inc()
			s.fail(w, r, err)
			return req, false
		}
		req.attributes = a
	}
	return req, true
}

// industry resolves the canonical industry for a request: the explicit
// field, then the attributes, then the profile category.
func (s *Server) industry(req decodedRequest) (string, error) {
	ds, err := s.engine.Cache().Get()
	if err != nil {
		return "", eris.Wrap(err, "api: load benchmark dataset")
	}
	attrs := req.attributes
	if req.Industry != "" {
		attrs.Industry = req.Industry
	}
	return engine.ResolveIndustry(req.profile, attrs, ds), nil
}

// fail maps err onto a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, profile.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errBadRequest
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
