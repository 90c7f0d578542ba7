// Package adapter provides transport-layer abstractions for communicating
// with the remote punch record backend.
//
// The primary abstraction is [RemoteGateway], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteGateway]) covering both the document
// collection API and the companion media host, plus [Connectivity] for the
// reachability signal the sync engine consumes.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/iplaycheck/go-punch-clock/models"
)

// RemoteGateway defines transport-agnostic communication with the remote
// record store and its media host. Implementations are responsible for
// serialisation, authentication header management, and mapping
// transport-level errors to the sentinel values defined in this package.
type RemoteGateway interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the gateway, or an
	// empty string if no token has been set yet.
	Token() string

	// UserID returns the subject claim of the stored token when it parses as
	// a JWT, or an empty string otherwise.
	UserID() string

	// CreateRecord inserts the record as a new remote document and returns
	// the server-assigned id. The device-generated id travels along as
	// clientId so the pair stays traceable.
	CreateRecord(ctx context.Context, record models.PunchRecord) (string, error)

	// QueryRecords fetches remote records matching the filter, ordered by
	// event time descending and capped at filter.Limit.
	QueryRecords(ctx context.Context, filter models.QueryFilter) ([]models.RemoteRecord, error)

	// UpdateRecord merges the patch into the remote document with the given
	// id.
	UpdateRecord(ctx context.Context, id string, patch map[string]any) error

	// DeleteRecord removes the remote document with the given id.
	DeleteRecord(ctx context.Context, id string) error

	// UploadMedia pushes an inline image (base64 data URI) to the media host
	// and returns the fetchable URL. Failures wrap [ErrMediaUpload].
	UploadMedia(ctx context.Context, dataURI string, nameHint string) (string, error)
}

// Connectivity reports whether the remote backend is currently reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}
