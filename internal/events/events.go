package events

import (
	"context"
	"sync"
	"time"
)

const (
	TopicUserEvents        = "user_events"
	TopicTransactionEvents = "transaction_events"
)

const (
	TypeUserRegistered    = "user_registered"
	TypeUserLoggedIn      = "user_logged_in"
	TypeUserBlocked       = "user_blocked"
	TypeTransactionScored = "transaction_scored"
)

type Event struct {
	Type          string    `json:"type"`
	Role          string    `json:"role,omitempty"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId,omitempty"`
	IsFraud       *bool     `json:"isFraud,omitempty"`
	FraudCount    int64     `json:"fraudCount,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	At            time.Time `json:"at"`
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }

func (Nop) Close() error { return nil }

type Published struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps every published event in memory. Err, when set, is
// returned from each publish after recording.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: event})
	return r.Err
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the Type of every recorded Event in publish order.
func (r *Recorder) Types() []string {
	var out []string
	for _, p := range r.Events() {
		if e, ok := p.Event.(Event); ok {
			out = append(out, e.Type)
		}
	}
	return out
}
