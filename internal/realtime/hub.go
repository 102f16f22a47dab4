// Package realtime fans PostgreSQL table change notifications out to
// in-process subscribers.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"roombooking/internal/metrics"
)

const Channel = "table_changes"

// ResyncTable marks the event sent after the listener reconnects; changes may
// have been missed so every subscriber receives it.
const ResyncTable = "*"

type Change struct {
	Table string `json:"table"`
	Event string `json:"event"`
	ID    string `json:"id"`
}

func DecodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Table == "" || c.Event == "" {
		return Change{}, fmt.Errorf("decode change: missing table or event in %q", payload)
	}
	c.Event = strings.ToUpper(c.Event)
	return c, nil
}

type Subscription struct {
	C      <-chan Change
	ch     chan Change
	tables map[string]bool
}

func (s *Subscription) wants(table string) bool {
	return table == ResyncTable || len(s.tables) == 0 || s.tables[table]
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	log    *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: 16, log: log}
}

// Subscribe registers interest in tables; no tables means every table.
func (h *Hub) Subscribe(tables ...string) *Subscription {
	ch := make(chan Change, h.buffer)
	s := &Subscription{C: ch, ch: ch, tables: make(map[string]bool, len(tables))}
	for _, t := range tables {
		if t = strings.TrimSpace(t); t != "" {
			s.tables[t] = true
		}
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	metrics.SubscriberAdded()
	return s
}

func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
	metrics.SubscriberRemoved()
}

// Publish never blocks: a subscriber with a full buffer misses the change.
func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.wants(c.Table) {
			continue
		}
		select {
		case s.ch <- c:
		default:
			h.log.WithFields(logrus.Fields{"table": c.Table, "event": c.Event}).Warn("realtime subscriber lagging, change dropped")
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
