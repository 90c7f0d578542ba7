package models

import (
	"strings"
	"time"
)

// PunchType distinguishes a check-in from a check-out event.
type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// Position is a geographic fix captured at punch time.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// PunchRecord is a single check-in/check-out event. It is created on the
// device with a locally generated ID and Synced=false, and flips to
// Synced=true once the record has been accepted by the remote store.
//
// Photo holds a base64 data URI until the image has been pushed to the media
// host, after which it is replaced by the returned URL. ID never changes
// after creation; only Synced, SyncedAt and Photo mutate.
type PunchRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      PunchType  `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Photo     string     `json:"photo,omitempty"`
	Location  *Position  `json:"location,omitempty"`
	Synced    bool       `json:"synced"`
	SyncedAt  *time.Time `json:"syncedAt,omitempty"`
}

// HasInlinePhoto reports whether the record still carries the raw image
// payload rather than a media-host URL.
func (r PunchRecord) HasInlinePhoto() bool {
	return strings.HasPrefix(r.Photo, "data:")
}
