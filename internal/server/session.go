package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/internal/scheduler"
	"github.com/me/rrsim/internal/store"
	"github.com/me/rrsim/pkg/model"
)

// session is one live simulation. Every engine call goes through mu.
type session struct {
	id        string
	name      string
	createdAt time.Time

	mu      sync.Mutex
	engine  *scheduler.Engine
	runID   string // archive id of the current finished run
	playing bool
}

func newSession(name string, cfg config.SimConfig, logger *slog.Logger) (*session, error) {
	id := "sim_" + uuid.New().String()
	eng, err := scheduler.NewEngine(cfg, logger.With("session_id", id))
	if err != nil {
		return nil, err
	}
	return &session{id: id, name: name, createdAt: time.Now().UTC(), engine: eng}, nil
}

// Step implements scheduler.Stepper under the session lock.
func (s *session) Step() (model.TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Step()
}

// do runs fn under the session lock. Mutations that leave the finished
// state forget the archived run id.
func (s *session) do(fn func(e *scheduler.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(s.engine)
	if s.engine.Phase() != model.RunPhaseFinished {
		s.runID = ""
	}
	return err
}

func (s *session) summary() model.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.engine.Config()
	return model.SessionInfo{
		ID:        s.id,
		Name:      s.name,
		Phase:     s.engine.Phase(),
		Clock:     s.engine.Clock(),
		Quantum:   cfg.Quantum,
		Cores:     cfg.Cores,
		Processes: len(s.engine.Snapshot().Processes),
		RunID:     s.runID,
		Playing:   s.playing,
		CreatedAt: s.createdAt,
	}
}

// archive stores the finished run once and returns its id. Without a store
// or before the run finishes it returns "".
func (s *session) archive(ctx context.Context, st store.Store) (string, error) {
	if st == nil {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID != "" {
		return s.runID, nil
	}
	m, err := s.engine.Metrics()
	if err != nil {
		return "", nil
	}
	name := s.name
	if name == "" {
		name = s.id
	}
	run := &model.Run{
		ID:       store.NewRunID(),
		Name:     name,
		Metrics:  m,
		Timeline: s.engine.Timeline(),
	}
	if err := st.CreateRun(ctx, run); err != nil {
		return "", fmt.Errorf("archive session %s: %w", s.id, err)
	}
	s.runID = run.ID
	return run.ID, nil
}

func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *Server) getSession(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, model.NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *Server) removeSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Server) sessionList() []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
