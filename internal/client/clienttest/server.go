// Package clienttest provides an in-memory stand-in for the transcription
// backend. It serves the config and session endpoints over httptest and
// records every request it receives.
package clienttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/transcript/internal/model"
)

const (
	apiKeyMinLength = 10
	sessionsPrefix  = "/api/sessions/"
	bodyReadDetail  = "There was an error parsing the body"
)

// Request is a recorded inbound request and the status it was answered with.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	Status int

	// ReadErr is set when the request body could not be read in full.
	ReadErr error
}

// Response is a canned reply installed with Respond.
type Response struct {
	Status int
	Body   string
}

type sessionRecord struct {
	session model.Session
	steps   []model.Step
}

// Server is a running stub backend. Close it when done.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	keyCheck  func(apiKey string) string
	apiKey    string
	nextID    int64
	sessions  map[int64]*sessionRecord
	requests  []Request
	overrides map[string]Response
	now       func() time.Time
}

// NewServer starts a stub backend with no config and no sessions.
func NewServer() *Server {
	s := &Server{
		sessions:  make(map[int64]*sessionRecord),
		overrides: make(map[string]Response),
		now:       time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc(sessionsPrefix, s.handleSession)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	return s.record(s.override(mux))
}

// Respond installs a canned reply for method and path, bypassing the
// in-memory backend.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = Response{Status: status, Body: body}
}

// SetKeyCheck installs a check consulted on POST /api/config. A non-empty
// return value rejects the key with that detail.
func (s *Server) SetKeyCheck(fn func(apiKey string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyCheck = fn
}

// SetAPIKey stores a key as if it had been saved through the API.
func (s *Server) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// UpdateSession applies fn to a stored session, for tests that need a
// session in a later pipeline state. It reports whether the id exists.
func (s *Server) UpdateSession(id int64, fn func(*model.Session, []model.Step)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return false
	}
	fn(&rec.session, rec.steps)
	rec.session.UpdatedAt = s.timestamp()
	return true
}

// Requests returns a copy of every recorded request in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, readErr := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		idx := len(s.requests)
		s.requests = append(s.requests, Request{
			Method:  r.Method,
			Path:    r.URL.EscapedPath(),
			Header:  r.Header.Clone(),
			Body:    body,
			Status:  http.StatusOK,
			ReadErr: readErr,
		})
		s.mu.Unlock()

		rec := &statusRecorder{ResponseWriter: w, server: s, idx: idx}
		if readErr != nil {
			writeDetail(rec, http.StatusBadRequest, bodyReadDetail)
			return
		}
		next.ServeHTTP(rec, r)
	})
}

// statusRecorder stores the status code a handler writes on the recorded
// request before the response reaches the client.
type statusRecorder struct {
	http.ResponseWriter
	server *Server
	idx    int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.server.mu.Lock()
	rw.server.requests[rw.idx].Status = code
	rw.server.mu.Unlock()
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		resp, ok := s.overrides[r.Method+" "+r.URL.EscapedPath()]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = io.WriteString(w, resp.Body)
	})
}

// handleConfig handles GET and POST /api/config.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		key := s.apiKey
		s.mu.Unlock()
		if key == "" {
			writeJSON(w, http.StatusOK, model.ConfigStatus{HasKey: false})
			return
		}
		writeJSON(w, http.StatusOK, model.ConfigStatus{HasKey: true, APIKeyMasked: model.MaskAPIKey(key)})
	case http.MethodPost:
		var in model.ConfigInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeValidation(w, "body", "Input should be a valid dictionary", "model_attributes_type")
			return
		}
		if len(in.APIKey) < apiKeyMinLength {
			writeValidation(w, "api_key", "String should have at least 10 characters", "string_too_short")
			return
		}
		s.mu.Lock()
		check := s.keyCheck
		s.mu.Unlock()
		if check != nil {
			if detail := check(in.APIKey); detail != "" {
				writeDetail(w, http.StatusBadRequest, detail)
				return
			}
		}
		s.SetAPIKey(in.APIKey)
		writeJSON(w, http.StatusOK, model.Ack{OK: true})
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

// handleSessions handles GET and POST /api/sessions.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.SessionList{Items: s.list()})
	case http.MethodPost:
		var in model.SessionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeValidation(w, "body", "Input should be a valid dictionary", "model_attributes_type")
			return
		}
		if in.URL == "" {
			writeValidation(w, "url", "Field required", "missing")
			return
		}
		id, ok := s.create(in)
		if !ok {
			writeDetail(w, http.StatusBadRequest, "missing api key")
			return
		}
		writeJSON(w, http.StatusOK, model.Created{ID: id})
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

// handleSession handles GET and DELETE /api/sessions/{id}.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, sessionsPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strings.Contains(raw, "/") {
		writeValidation(w, "session_id", "Input should be a valid integer", "int_parsing")
		return
	}

	switch r.Method {
	case http.MethodGet:
		detail, ok := s.get(id)
		if !ok {
			writeDetail(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodDelete:
		if !s.delete(id) {
			writeDetail(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, model.Ack{OK: true})
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (s *Server) create(in model.SessionInput) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.apiKey == "" {
		return 0, false
	}
	s.nextID++
	now := s.timestamp()
	rec := &sessionRecord{
		session: model.Session{
			ID:        s.nextID,
			URL:       in.URL,
			Style:     in.Style,
			Remark:    in.Remark,
			Status:    model.StatusPending,
			Stage:     model.StageDownload,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, stage := range model.Stages {
		rec.steps = append(rec.steps, model.Step{
			Step:      stage,
			Status:    model.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	s.sessions[rec.session.ID] = rec
	return rec.session.ID, true
}

// list returns sessions newest first without transcript or note bodies.
func (s *Server) list() []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, rec := range s.sessions {
		sess := rec.session
		sess.Error, sess.Transcript, sess.Note = "", "", ""
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Server) get(id int64) (model.SessionDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return model.SessionDetail{}, false
	}
	steps := make([]model.Step, len(rec.steps))
	copy(steps, rec.steps)
	return model.SessionDetail{Session: rec.session, Steps: steps}, true
}

func (s *Server) delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

type detailResponse struct {
	Detail any `json:"detail"`
}

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeValidation mirrors the backend's 422 shape, where detail is a list.
func writeValidation(w http.ResponseWriter, field, msg, kind string) {
	loc := []string{"body", field}
	if field == "session_id" {
		loc = []string{"path", field}
	}
	writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: []validationIssue{{Loc: loc, Msg: msg, Type: kind}}})
}
