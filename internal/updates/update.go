// Package updates propagates agent-issued document updates to subscribers.
package updates

import (
	"encoding/json"
	"time"
)

// Kind identifies which document family an update belongs to.
type Kind string

const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover_letter"
)

// Update carries one full document snapshot emitted after a mutation.
// Doc is the serialized document; Seq reflects publish order within the broker.
type Update struct {
	Kind  Kind            `json:"kind"`
	DocID string          `json:"docId"`
	Seq   int64           `json:"seq"`
	Doc   json.RawMessage `json:"doc"`
	At    time.Time       `json:"at"`
}
