package http

import (
	"log/slog"
	"sync"
)

// streamBuffer holds a full scene transition of events per client.
const streamBuffer = 256

// StreamManager handles active SSE connections, keyed by editor.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for the editor. The returned func unregisters and closes it.
func (sm *StreamManager) Subscribe(editor string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if _, ok := sm.subscribers[editor]; !ok {
		sm.subscribers[editor] = make(map[chan<- string]struct{})
	}
	sm.subscribers[editor][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[editor]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, editor)
				}
			}
		})
	}
}

// Subscribers counts the open streams of an editor.
func (sm *StreamManager) Subscribers(editor string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[editor])
}

// Broadcast sends msg to every stream of the editor. Slow clients lose messages.
func (sm *StreamManager) Broadcast(editor string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[editor] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "editor", editor)
		}
	}
}
