package adapter

import "errors"

// ErrNetworkUnavailable is returned when the remote backend could not be
// reached at the transport level (DNS failure, refused connection, timeout).
var ErrNetworkUnavailable = errors.New("network unavailable")

// ErrUnauthorized is returned when the backend rejects the request because
// the bearer token is missing, expired or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRejected is returned when the backend refuses the payload itself, for
// example a validation failure or a conflicting document state.
var ErrRejected = errors.New("request rejected by server")

// ErrMediaUpload is returned when pushing an inline photo to the media host
// fails. Record sync treats it as non-fatal and degrades to text-only upload.
var ErrMediaUpload = errors.New("media upload failed")
