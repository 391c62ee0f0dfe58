// Package queue is a reliable Redis list queue: messages move to a
// processing list while handled and return to the pending list on failure
// or when their reservation goes stale.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Message is the envelope stored in Redis. Payload is msgpack-encoded.
type Message struct {
	ID         string    `msgpack:"id"`
	Type       string    `msgpack:"type"`
	Payload    []byte    `msgpack:"payload"`
	Attempts   int       `msgpack:"attempts"`
	EnqueuedAt time.Time `msgpack:"enqueued_at"`
}

// NewMessage encodes v as the payload of a fresh message.
func NewMessage(typ string, v interface{}) (Message, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Message{
		ID:         uuid.New().String(),
		Type:       typ,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unpacks the payload into v.
func (m Message) Decode(v interface{}) error {
	if err := msgpack.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}

func encode(m Message) ([]byte, error) {
	return msgpack.Marshal(m)
}

func decode(raw []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
