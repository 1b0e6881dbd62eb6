package gatepass

import (
	"context"
	"errors"
	"time"

	"github.com/solarspot/gatepass/storage"
)

const (
	auditEventScanGranted        = "scan_granted"
	auditEventScanDuplicate      = "scan_duplicate"
	auditEventScanRejected       = "scan_rejected"
	auditEventScanIgnored        = "scan_ignored"
	auditEventScanPersistFailure = "scan_persist_failure"
	auditEventManifestLoaded     = "manifest_loaded"
	auditEventManifestLoadFailed = "manifest_load_failed"
	auditEventPurgeCompleted     = "purge_completed"
	auditEventPurgeFailed        = "purge_failed"
)

// AuditErrorCode defines a public type used by gatepass APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrScanPending        AuditErrorCode = "scan_pending"
	auditErrAdmissionNotMade   AuditErrorCode = "admission_not_persisted"
	auditErrManifestUnreadable AuditErrorCode = "manifest_unreadable"
	auditErrNoManifest         AuditErrorCode = "no_manifest"
	auditErrStorageUnavailable AuditErrorCode = "storage_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	scanID string,
	ticketID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		ScanID:    scanID,
		TicketID:  ticketID,
		Terminal:  e.config.Terminal.ID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrScanPending):
		return auditErrScanPending
	case errors.Is(err, ErrAdmissionNotPersisted):
		return auditErrAdmissionNotMade
	case errors.Is(err, ErrManifestUnreadable):
		return auditErrManifestUnreadable
	case errors.Is(err, ErrNoManifest):
		return auditErrNoManifest
	case errors.Is(err, storage.ErrRedisUnavailable):
		return auditErrStorageUnavailable
	default:
		return auditErrInternal
	}
}
