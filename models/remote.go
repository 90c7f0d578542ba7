package models

import "time"

// RemoteRecord is a punch document as it exists in the remote collection.
// The remote store assigns its own ID on creation; ClientID preserves the
// device-generated id so an uploaded record stays traceable.
type RemoteRecord struct {
	ID        string     `json:"id,omitempty"`
	ClientID  string     `json:"clientId,omitempty"`
	UserID    string     `json:"userId"`
	Type      PunchType  `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Photo     string     `json:"photo,omitempty"`
	Location  *Position  `json:"location,omitempty"`
	SyncedAt  *time.Time `json:"syncedAt,omitempty"`
}

// QueryFilter bounds a remote record query. Results are ordered by event
// time descending; Limit caps the page size.
type QueryFilter struct {
	UserID string `json:"userId,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// StoreStats summarises the local store for status displays.
type StoreStats struct {
	TotalRecords int `json:"totalRecords"`
	PendingSync  int `json:"pendingSync"`
}

// SyncStatus is a point-in-time snapshot of the sync engine.
type SyncStatus struct {
	Syncing         bool `json:"isSyncing"`
	AutoSyncEnabled bool `json:"isAutoSyncEnabled"`
	Online          bool `json:"isOnline"`
}
