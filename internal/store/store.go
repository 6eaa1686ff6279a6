// Package store persists per-user recency scan results between runs. The
// cache is the contract that makes scans resumable: once a taxon has a
// record, even an empty one meaning "scanned, found nothing", it is never
// scanned again for that user.
package store

import (
	"context"

	"github.com/inat-tools/rarities/internal/model"
)

// Driver names accepted by the CLI's store configuration.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Store is one user's durable recency cache, keyed by taxon id.
type Store interface {
	// Get returns the cached record for a taxon, or nil when the taxon has
	// never been scanned.
	Get(ctx context.Context, taxonID int64) (*model.RecencyRecord, error)

	// Put records a scan result and makes it durable before returning.
	Put(ctx context.Context, taxonID int64, rec model.RecencyRecord) error

	// Len reports how many taxa have been scanned.
	Len(ctx context.Context) (int, error)

	// Clear forgets every cached record.
	Clear(ctx context.Context) error

	// Flush forces any buffered state to disk. Backends that write through
	// on every Put may treat this as a no-op.
	Flush(ctx context.Context) error

	Close() error
}
