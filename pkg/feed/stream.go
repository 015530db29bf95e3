package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Subscription is a live view onto one subtree. Every change re-delivers
// the whole subtree as a Snapshot on Updates. The consumer owns the
// subscription's lifetime: failing to Cancel leaks a server-side listener
// that keeps pushing updates to a dead consumer.
type Subscription struct {
	updates chan Snapshot
	errs    chan error

	cancel context.CancelFunc
	once   sync.Once
}

// Updates delivers the current subtree after every change. The channel
// closes after Cancel or a stream failure.
func (s *Subscription) Updates() <-chan Snapshot { return s.updates }

// Errors delivers at most one stream failure. Cancellation is not a
// failure and produces nothing here.
func (s *Subscription) Errors() <-chan error { return s.errs }

// Cancel releases the server-side listener. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Subscribe opens a streaming connection to the subtree at path and
// returns immediately. The first update arrives once the server sends
// its initial snapshot.
func (c *Client) Subscribe(path string) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		updates: make(chan Snapshot),
		errs:    make(chan error, 1),
		cancel:  cancel,
	}
	go c.stream(ctx, path, sub)
	return sub
}

// streamEvent is one server-sent message: a put replaces the subtree at
// Path, a patch merges children into it.
type streamEvent struct {
	Path string `json:"path"`
	Data any    `json:"data"`
}

func (c *Client) stream(ctx context.Context, path string, sub *Subscription) {
	defer close(sub.updates)
	defer close(sub.errs)

	fail := func(err error) {
		if ctx.Err() != nil {
			return // cancelled, expected outcome
		}
		c.log.Error("stream failed", "path", path, "err", err)
		select {
		case sub.errs <- err:
		default:
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		fail(fmt.Errorf("feed: subscribe %q: %w", path, err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.sse.Do(req)
	if err != nil {
		fail(fmt.Errorf("feed: subscribe %q: %w", path, err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		fail(&BackendError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))})
		return
	}

	c.log.Debug("stream open", "path", path)

	var (
		root  any
		event string
	)
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "put", "patch":
				var msg streamEvent
				if err := json.Unmarshal([]byte(data), &msg); err != nil {
					fail(fmt.Errorf("feed: stream %q: decode event: %w", path, err))
					return
				}
				root = applyEvent(root, msg.Path, msg.Data, event == "patch")
				select {
				case sub.updates <- NewSnapshot(lastSegment(path), root):
				case <-ctx.Done():
					return
				}
			case "keep-alive":
				// heartbeat, nothing to apply
			case "cancel", "auth_revoked":
				fail(&BackendError{Path: path, Status: http.StatusUnauthorized, Body: event})
				return
			}
		}
	}

	if err := sc.Err(); err != nil {
		fail(fmt.Errorf("feed: stream %q: %w", path, err))
	}
}

// applyEvent mutates the materialized tree with one put/patch event and
// returns the new root.
func applyEvent(root any, path string, data any, patch bool) any {
	segs := splitPath(path)

	if len(segs) == 0 {
		if !patch {
			return data
		}
		return mergeInto(root, data)
	}

	rootMap, ok := root.(map[string]any)
	if !ok {
		rootMap = map[string]any{}
	}

	// Walk to the parent of the target, materializing maps as needed.
	node := rootMap
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}

	last := segs[len(segs)-1]
	if patch {
		node[last] = mergeInto(node[last], data)
	} else if data == nil {
		delete(node, last)
	} else {
		node[last] = data
	}
	return rootMap
}

// mergeInto merges the children of data into target (patch semantics:
// nil children delete, others replace).
func mergeInto(target, data any) any {
	patchMap, ok := data.(map[string]any)
	if !ok {
		return data
	}
	targetMap, ok := target.(map[string]any)
	if !ok {
		targetMap = map[string]any{}
	}
	for k, v := range patchMap {
		if v == nil {
			delete(targetMap, k)
			continue
		}
		targetMap[k] = v
	}
	return targetMap
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
