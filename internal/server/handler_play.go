package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/rrsim/internal/scheduler"
	"github.com/me/rrsim/pkg/model"
)

type completeEvent struct {
	Metrics model.Metrics `json:"metrics"`
	RunID   string        `json:"run_id,omitempty"`
}

// handlePlay steps a session on a timer and streams every tick via
// Server-Sent Events. A run still in SETUP is started first. Closing the
// connection pauses playback; the session keeps its state and a new
// request continues where the last one stopped.
// GET /api/v1/sessions/{id}/play?delay=200ms or ?speed=0.5
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sess, err := s.getSession(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}

	delay, apiErr := s.playDelay(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	err = sess.do(func(e *scheduler.Engine) error {
		if sess.playing {
			return model.NewInvalidStateError("session %s is already playing", sess.id)
		}
		switch e.Phase() {
		case model.RunPhaseFinished:
			return model.NewInvalidStateError("run has finished; reset or reconfigure first")
		case model.RunPhaseSetup:
			if err := e.Start(); err != nil {
				return err
			}
		}
		sess.playing = true
		return nil
	})
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	defer func() {
		sess.mu.Lock()
		sess.playing = false
		sess.mu.Unlock()
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// A failed write means the client is gone: cancel so the player stops
	// after the current tick instead of running on unobserved.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	var sendErr error
	onTick := func(res model.TickResult) {
		if sendErr != nil {
			return
		}
		if sendErr = sendSSEEvent(w, flusher, "tick", res); sendErr != nil {
			cancel()
		}
	}
	player := scheduler.NewPlayer(sess, scheduler.PlayerConfig{Delay: delay}, onTick, s.logger)
	err = player.Start(ctx)

	// The last tick may finish the run even when its event was not delivered.
	runID := s.archive(r, sess)

	switch {
	case sendErr != nil:
		s.logger.Debug("playback paused (sse write failed)", "session_id", sess.id, "error", sendErr)
		return
	case err != nil && ctx.Err() != nil:
		s.logger.Debug("playback paused (client disconnected)", "session_id", sess.id)
		return
	case err != nil:
		var ae *model.APIError
		if !errors.As(err, &ae) {
			ae = model.NewInternalError(err.Error())
		}
		sendSSEEvent(w, flusher, "error", ae)
		return
	}

	ev := completeEvent{RunID: runID}
	sess.do(func(e *scheduler.Engine) error {
		ev.Metrics, err = e.Metrics()
		return err
	})
	sendSSEEvent(w, flusher, "complete", ev)
}

// playDelay reads ?delay= (a duration) or ?speed= (a factor of the default
// one-second step, clamped to [0.2, 3]). The server default applies when
// neither is given.
func (s *Server) playDelay(r *http.Request) (time.Duration, *model.APIError) {
	q := r.URL.Query()
	if v := q.Get("delay"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return 0, model.NewValidationError("invalid query",
				model.FieldError{Field: "delay", Message: fmt.Sprintf("must be a non-negative duration, got %q", v)})
		}
		return d, nil
	}
	if v := q.Get("speed"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, model.NewValidationError("invalid query",
				model.FieldError{Field: "speed", Message: fmt.Sprintf("must be a number, got %q", v)})
		}
		return scheduler.SpeedDelay(f), nil
	}
	return s.config.PlayDelay, nil
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
