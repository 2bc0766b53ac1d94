package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/opencrate/record"
)

// Publisher is the part of Client the change feed needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Change is the JSON payload published for every successful insert or update.
type Change struct {
	EventID   string    `json:"event_id"`
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeFeed is a record.Observer that publishes successful writes to
// <prefix>/record/<table>/<op>. Reads and failed statements are ignored.
type ChangeFeed struct {
	pub    Publisher
	topics Topics
	qos    byte

	newID func() string
	now   func() time.Time
}

// NewChangeFeed returns a change feed publishing through pub.
func NewChangeFeed(pub Publisher, topics Topics, qos byte) *ChangeFeed {
	return &ChangeFeed{
		pub:    pub,
		topics: topics,
		qos:    qos,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Observe implements record.Observer.
func (f *ChangeFeed) Observe(_ context.Context, ev record.Event) error {
	if ev.Err != nil || (ev.Op != record.OpInsert && ev.Op != record.OpUpdate) {
		return nil
	}

	payload, err := json.Marshal(Change{
		EventID:   f.newID(),
		Table:     ev.Table,
		Op:        string(ev.Op),
		ID:        ev.ID,
		Timestamp: f.now(),
	})
	if err != nil {
		return fmt.Errorf("%w: encoding change: %w", ErrPublishFailed, err)
	}

	return f.pub.Publish(f.topics.RecordChange(ev.Table, string(ev.Op)), payload, f.qos, false)
}

// DecodeChange parses a change-feed payload.
func DecodeChange(payload []byte) (Change, error) {
	var ch Change
	if err := json.Unmarshal(payload, &ch); err != nil {
		return Change{}, fmt.Errorf("%w: %w", ErrInvalidChange, err)
	}
	if ch.Table == "" || ch.Op == "" {
		return Change{}, fmt.Errorf("%w: missing table or op", ErrInvalidChange)
	}
	return ch, nil
}
