package models

import (
	"encoding/json"
	"time"
)

// SyncAction names the remote mutation a queue item carries.
type SyncAction string

const (
	ActionUpdate SyncAction = "update"
	ActionDelete SyncAction = "delete"
)

// SyncQueueItem is a pending remote mutation for an already-synced record.
// Items are assigned a monotonic store ID on insert and removed only after
// the mutation has been confirmed applied remotely. A failed item stays in
// the queue with Retries incremented and is retried on the next sync pass.
type SyncQueueItem struct {
	ID        int64           `json:"id"`
	Action    SyncAction      `json:"action"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Retries   int             `json:"retries"`
}

// Mutation decodes the item payload. The payload always carries the remote
// record id; for updates the remaining fields form the merge patch.
func (i SyncQueueItem) Mutation() (RecordMutation, error) {
	var m RecordMutation
	if err := json.Unmarshal(i.Data, &m); err != nil {
		return RecordMutation{}, err
	}
	return m, nil
}

// RecordMutation is the decoded payload of a queue item.
type RecordMutation struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields,omitempty"`
}

// NewMutationPayload encodes a remote mutation for queueing.
func NewMutationPayload(id string, fields map[string]any) (json.RawMessage, error) {
	return json.Marshal(RecordMutation{ID: id, Fields: fields})
}
