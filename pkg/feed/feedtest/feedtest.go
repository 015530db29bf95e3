// Package feedtest provides a fake realtime database server for tests:
// snapshot GETs, SSE streaming with scripted events, push and delete.
// Tests point a feed.Client at Server.URL instead of mocking transports.
package feedtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tree     map[string]any
	pushes   int
	delay    time.Duration
	failWith int

	streams []chan string
}

// NewServer serves tree as the database root.
func NewServer(tree map[string]any) *Server {
	if tree == nil {
		tree = map[string]any{}
	}
	s := &Server{tree: tree}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Delay makes every request stall first; use with a short client timeout
// to provoke ErrFetchTimeout.
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// FailWith makes every request answer with the given status code.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	s.failWith = status
	s.mu.Unlock()
}

// Broadcast sends a raw SSE event to every open stream.
func (s *Server) Broadcast(event, path string, data any) {
	payload, _ := json.Marshal(map[string]any{"path": path, "data": data})
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.streams {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Pushes reports how many POSTs the server accepted.
func (s *Server) Pushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushes
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay, fail := s.delay, s.failWith
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fail != 0 {
		http.Error(w, `{"error":"boom"}`, fail)
		return
	}

	path := strings.Trim(strings.TrimSuffix(r.URL.Path, ".json"), "/")

	switch {
	case r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/event-stream"):
		s.stream(w, r, path)
	case r.Method == http.MethodGet:
		s.mu.Lock()
		val := resolve(s.tree, path)
		s.mu.Unlock()
		writeJSON(w, val)
	case r.Method == http.MethodPost:
		var body any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.pushes++
		key := fmt.Sprintf("-Push%04d", s.pushes)
		setAt(s.tree, path+"/"+key, body)
		s.mu.Unlock()
		writeJSON(w, map[string]string{"name": key})
	case r.Method == http.MethodDelete:
		s.mu.Lock()
		setAt(s.tree, path, nil)
		s.mu.Unlock()
		writeJSON(w, nil)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request, path string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "no flush", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	ch := make(chan string, 16)
	s.mu.Lock()
	s.streams = append(s.streams, ch)
	initial, _ := json.Marshal(map[string]any{"path": "/", "data": resolve(s.tree, path)})
	s.mu.Unlock()

	fmt.Fprintf(w, "event: put\ndata: %s\n\n", initial)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprint(w, msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func resolve(tree map[string]any, path string) any {
	var node any = tree
	if path == "" {
		return node
	}
	for _, seg := range strings.Split(path, "/") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[seg]
	}
	return node
}

func setAt(tree map[string]any, path string, val any) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	node := tree
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}
	last := segs[len(segs)-1]
	if val == nil {
		delete(node, last)
		return
	}
	node[last] = val
}
