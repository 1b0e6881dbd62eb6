package storage

import (
	"context"
	"errors"
)

// Region names used by the verification engine.
const (
	RegionManifest   = "manifest"
	RegionAdmissions = "admissions"
)

// ErrNotFound is returned by Load when the region has never been saved or has
// been deleted. It is a normal first-boot condition, not a failure.
var ErrNotFound = errors.New("storage region not found")

// Store defines a public type used by gatepass APIs.
//
// Store is the durable snapshot backend. Save must be atomic per region: a
// reader never observes a half-written blob. Implementations are safe for
// concurrent use when documented as such.
type Store interface {
	Save(ctx context.Context, region string, data []byte) error
	Load(ctx context.Context, region string) ([]byte, error)
	Delete(ctx context.Context, region string) error
}
