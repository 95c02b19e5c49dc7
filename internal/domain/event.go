package domain

import (
	"context"
	"time"
)

// RawEvent is a result-set message read from the source topic, along with
// the Kafka coordinates needed to commit it.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time

	// Commit acknowledges the message. Nil for events that did not come from
	// a consumer group.
	Commit func(ctx context.Context) error
}
