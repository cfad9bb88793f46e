package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/scribe/pkg/domain"
)

// Event is the payload streamed to /events subscribers.
type Event struct {
	Type   domain.EventType `json:"type"`
	RunID  string           `json:"run_id"`
	Flow   string           `json:"flow,omitempty"`
	Step   string           `json:"step,omitempty"`
	TookMS int64            `json:"took_ms,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// StreamManager fans run events out to SSE subscribers, keyed by run ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. logger may be nil.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for runID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(runID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 32)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[runID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, runID)
			}
		}
	}
}

// Broadcast delivers ev to the subscribers of its run.
func (sm *StreamManager) Broadcast(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[ev.RunID] {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping event", "run_id", ev.RunID, "type", ev.Type)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every run and step event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	errString := func(err error) string {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			sm.Broadcast(Event{Type: e.Type, RunID: e.RunID, Flow: e.Flow})
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			sm.Broadcast(Event{Type: e.Type, RunID: e.RunID, Flow: e.Flow, TookMS: e.Took.Milliseconds(), Error: errString(e.Err)})
		},
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			sm.Broadcast(Event{Type: e.Type, RunID: e.RunID, Flow: e.Flow, Step: e.Step})
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			sm.Broadcast(Event{Type: e.Type, RunID: e.RunID, Flow: e.Flow, Step: e.Step, TookMS: e.Took.Milliseconds(), Error: errString(e.Err)})
		},
	}
}

// SubscribeEvents handles GET /events?run_id=...&types=step_enter,run_finish (SSE).
// The stream ends after the run_finish event or when the client disconnects.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		s.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "run_id is required"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}

	var filter map[domain.EventType]bool
	if types := r.URL.Query().Get("types"); types != "" {
		filter = make(map[domain.EventType]bool)
		for _, t := range strings.Split(types, ",") {
			filter[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	ch, cancel := s.streams.Subscribe(runID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: subscribed", "run_id", runID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "run_id", runID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if filter == nil || filter[ev.Type] {
				data, err := json.Marshal(ev)
				if err != nil {
					s.logger.Error("SSE: event encode failed", "error", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
				flusher.Flush()
			}
			if ev.Type == domain.EventRunFinish {
				return
			}
		}
	}
}
