// Package eventlog keeps the last few resolution events in a fixed-capacity
// queue and renders them as plain text.
package eventlog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the number of events retained.
const DefaultCapacity = 10

// Event is one line in the log.
type Event struct {
	Time    time.Time
	Source  string
	Key     string
	Message string
}

func (e Event) String() string {
	var sb strings.Builder
	sb.WriteString(e.Time.UTC().Format(time.RFC3339))
	if e.Source != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Source)
	}
	if e.Key != "" {
		fmt.Fprintf(&sb, " [%s]", e.Key)
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Log is a capped queue of events, safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	cap    int
	events []Event
}

// New returns a Log holding at most capacity events. A capacity below one
// uses DefaultCapacity.
func New(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{cap: capacity, events: make([]Event, 0, capacity)}
}

// Append adds e, dropping the oldest event when the log is full.
func (l *Log) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == l.cap {
		copy(l.events, l.events[1:])
		l.events = l.events[:l.cap-1]
	}
	l.events = append(l.events, e)
}

// Events returns a copy of the retained events, oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// String renders the whole queue, one event per line.
func (l *Log) String() string {
	var sb strings.Builder
	for _, e := range l.Events() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
