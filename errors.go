package gatepass

import "errors"

var (
	// ErrSecretRequired is an exported constant or variable used by the verification engine.
	ErrSecretRequired = errors.New("signing secret required")
	// ErrStorageRequired is an exported constant or variable used by the verification engine.
	ErrStorageRequired = errors.New("storage backend required")
	// ErrManifestUnreadable is an exported constant or variable used by the verification engine.
	ErrManifestUnreadable = errors.New("manifest unreadable")
	// ErrNoManifest is returned by Verify before any manifest has been loaded on this terminal.
	ErrNoManifest = errors.New("no manifest loaded")
	// ErrScanPending is returned by Verify while a previous resolved scan has not been acknowledged.
	ErrScanPending = errors.New("previous scan not acknowledged")
	// ErrAdmissionNotPersisted is returned when a grant was rolled back because the admission snapshot could not be saved.
	ErrAdmissionNotPersisted = errors.New("admission not persisted")
	// ErrEngineNotReady is an exported constant or variable used by the verification engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
