package service

import "errors"

var (
	// ErrSyncInProgress is returned by Run when a pass is already underway.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrOffline is returned when the remote backend is unreachable and no
	// sync phase was attempted.
	ErrOffline = errors.New("device is offline")

	// ErrLocationRequired is returned by CreatePunch when the geofence is
	// enabled but the input carries no position.
	ErrLocationRequired = errors.New("location required for punch")

	// ErrOutsideAllowedZone is returned by CreatePunch when the position
	// lies outside the allowed radius of every configured zone.
	ErrOutsideAllowedZone = errors.New("position outside allowed zones")

	// ErrNoUserID is returned when neither the configuration nor the gateway
	// token yields a user identity.
	ErrNoUserID = errors.New("no user id available")
)
