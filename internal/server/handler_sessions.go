package server

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/me/rrsim/internal/scheduler"
	"github.com/me/rrsim/pkg/model"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	req := struct {
		Name    string `json:"name"`
		Quantum int    `json:"quantum"`
		Cores   int    `json:"cores"`
	}{}
	if apiErr := decodeBody(r, &req, true); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	cfg := s.config.Sim
	if req.Quantum != 0 {
		cfg.Quantum = req.Quantum
	}
	if req.Cores != 0 {
		cfg.Cores = req.Cores
	}
	sess, err := newSession(req.Name, cfg, s.logger)
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	s.addSession(sess)
	s.logger.Info("session created", "session_id", sess.id, "quantum", cfg.Quantum, "cores", cfg.Cores)

	respondCreated(w, reqID, sess.summary())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	sessions := s.sessionList()
	data := make([]model.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		data = append(data, sess.summary())
	}
	sort.Slice(data, func(i, j int) bool {
		if !data[i].CreatedAt.Equal(data[j].CreatedAt) {
			return data[i].CreatedAt.Before(data[j].CreatedAt)
		}
		return data[i].ID < data[j].ID
	})
	respondOK(w, reqID, data)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	var snap model.Snapshot
	sess.do(func(e *scheduler.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	respondOK(w, reqID, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if !s.removeSession(id) {
		respondErr(w, reqID, model.NewNotFoundError("session", id))
		return
	}
	s.logger.Info("session deleted", "session_id", id)
	respondOK(w, reqID, map[string]any{"deleted": true})
}

func (s *Server) handleRegisterProcess(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	var req struct {
		Arrival int `json:"arrival"`
		Burst   int `json:"burst"`
	}
	if apiErr := decodeBody(r, &req, false); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	var pid int
	err = sess.do(func(e *scheduler.Engine) error {
		var err error
		pid, err = e.Register(req.Arrival, req.Burst)
		return err
	})
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondCreated(w, reqID, map[string]any{"id": pid})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	var req struct {
		Quantum int `json:"quantum"`
		Cores   int `json:"cores"`
	}
	if apiErr := decodeBody(r, &req, false); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	err = sess.do(func(e *scheduler.Engine) error {
		return e.Configure(req.Quantum, req.Cores)
	})
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, sess.summary())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	if err := sess.do(func(e *scheduler.Engine) error { return e.Start() }); err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, sess.summary())
}

type stepResponse struct {
	model.TickResult
	RunID string `json:"run_id,omitempty"`
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	res, err := sess.Step()
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	resp := stepResponse{TickResult: res}
	if res.Finished {
		resp.RunID = s.archive(r, sess)
	}
	respondOK(w, reqID, resp)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	var resp model.RunResult
	err = sess.do(func(e *scheduler.Engine) error {
		m, err := e.RunToCompletion(r.Context())
		if err != nil {
			return err
		}
		resp.Metrics = m
		resp.Timeline = e.Timeline()
		return nil
	})
	if err != nil && r.Context().Err() != nil {
		// Nobody is left to answer. The run stays RUNNING and can be resumed.
		s.logger.Debug("run interrupted (client disconnected)", "session_id", sess.id, "error", err)
		return
	}
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	resp.RunID = s.archive(r, sess)
	respondOK(w, reqID, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	sess.do(func(e *scheduler.Engine) error {
		e.Reset()
		return nil
	})
	respondOK(w, reqID, sess.summary())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	var m model.Metrics
	err = sess.do(func(e *scheduler.Engine) error {
		var err error
		m, err = e.Metrics()
		return err
	})
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, m)
}

// archive stores a finished session run. Archive failures are logged and
// do not fail the request. The write outlives a cancelled request so that a
// run finished just before the client left is still kept.
func (s *Server) archive(r *http.Request, sess *session) string {
	runID, err := sess.archive(context.WithoutCancel(r.Context()), s.store)
	if err != nil {
		s.logger.Error("archive failed", "session_id", sess.id, "error", err)
		return ""
	}
	if runID != "" {
		s.logger.Info("run archived", "session_id", sess.id, "run_id", runID)
	}
	return runID
}
