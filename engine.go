package gatepass

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solarspot/gatepass/ledger"
	"github.com/solarspot/gatepass/manifest"
	"github.com/solarspot/gatepass/storage"
	"github.com/solarspot/gatepass/token"
)

// Engine defines a public type used by gatepass APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	codec    *token.Codec
	manifest *manifest.Store
	ledger   *ledger.Ledger
	store    storage.Store
	audit    *auditDispatcher
	metrics  *Metrics
	now      func() time.Time

	// mu serializes the scan cycle against manifest loads and purges. A
	// terminal has one scanner; the mutex is the whole concurrency story.
	mu       sync.Mutex
	state    ScanState
	last     *Outcome
	ackTimer *time.Timer

	// manifestLoaded flips on the first successful load or snapshot restore
	// and off again on purge. Scans refuse to run without it rather than
	// reject every credential as unlisted.
	manifestLoaded bool
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}
	e.mu.Unlock()
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Verify describes the verify operation and its observable behavior.
//
// Verify decodes the scanned credential, matches it against the loaded
// manifest, and resolves the scan to exactly one of granted, duplicate, or
// rejected. Rejections are outcomes, not errors. Verify may return an error
// when no manifest has been loaded yet ([ErrNoManifest]), when a previous
// scan is still unacknowledged ([ErrScanPending]), or when a grant could not
// be persisted ([ErrAdmissionNotPersisted]); in the last case the admission
// was rolled back and the credential may be retried.
//
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Verify(ctx context.Context, credential string) (*Outcome, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	start := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateResolved {
		e.metricInc(MetricScanIgnored)
		e.emitAudit(ctx, auditEventScanIgnored, false, "", "", ErrScanPending, nil)
		return nil, ErrScanPending
	}

	if !e.manifestLoaded {
		e.emitAudit(ctx, auditEventScanIgnored, false, "", "", ErrNoManifest, nil)
		return nil, ErrNoManifest
	}

	e.state = StateDecoding
	outcome := &Outcome{
		ScanID: uuid.NewString(),
		At:     start,
	}

	claim, err := e.codec.Decode(credential)
	if err != nil {
		outcome.Decision = DecisionRejected
		switch {
		case errors.Is(err, token.ErrMalformed):
			outcome.Reason = ReasonMalformedCredential
			e.metricInc(MetricScanRejectedMalformed)
		case errors.Is(err, token.ErrSignatureInvalid):
			outcome.Reason = ReasonSignatureInvalid
			e.metricInc(MetricScanRejectedSignature)
		default:
			outcome.Reason = ReasonPayloadCorrupt
			e.metricInc(MetricScanRejectedPayload)
		}
		e.resolve(ctx, outcome)
		e.observeVerify(start)
		return outcome, nil
	}

	e.state = StateMatching
	outcome.TicketID = manifest.NormalizeTicketID(claim.SubjectID)

	entry, ok := e.manifest.Lookup(claim.SubjectID)
	if !ok {
		outcome.Decision = DecisionRejected
		outcome.Reason = ReasonNotInManifest
		e.metricInc(MetricScanRejectedUnlisted)
		e.resolve(ctx, outcome)
		e.observeVerify(start)
		return outcome, nil
	}
	outcome.Entry = entry

	if e.ledger.HasAdmitted(outcome.TicketID) {
		outcome.Decision = DecisionDuplicate
		e.metricInc(MetricScanDuplicate)
		e.resolve(ctx, outcome)
		e.observeVerify(start)
		return outcome, nil
	}

	// Grant. The admission must hit durable storage before it is reported;
	// otherwise a crash between grant and save would let the credential in
	// twice after restart.
	e.ledger.RecordAdmission(outcome.TicketID, start)
	if err := e.persistAdmissions(ctx); err != nil {
		e.ledger.Remove(outcome.TicketID)
		e.state = StateIdle
		e.metricInc(MetricAdmissionPersistFailure)
		e.emitAudit(ctx, auditEventScanPersistFailure, false, outcome.ScanID, outcome.TicketID, ErrAdmissionNotPersisted, nil)
		return nil, fmt.Errorf("%w: %v", ErrAdmissionNotPersisted, err)
	}

	outcome.Decision = DecisionGranted
	e.metricInc(MetricScanGranted)
	e.resolve(ctx, outcome)
	e.observeVerify(start)
	return outcome, nil
}

// resolve publishes the outcome, parks the scan cycle in StateResolved, and
// arms the auto-acknowledge timer. Caller holds e.mu.
func (e *Engine) resolve(ctx context.Context, outcome *Outcome) {
	e.last = outcome
	e.state = StateResolved

	switch outcome.Decision {
	case DecisionGranted:
		e.emitAudit(ctx, auditEventScanGranted, true, outcome.ScanID, outcome.TicketID, nil, nil)
	case DecisionDuplicate:
		e.emitAudit(ctx, auditEventScanDuplicate, false, outcome.ScanID, outcome.TicketID, nil, nil)
	default:
		reason := outcome.Reason
		e.emitAudit(ctx, auditEventScanRejected, false, outcome.ScanID, outcome.TicketID, nil, func() map[string]string {
			return map[string]string{"reason": reason.String()}
		})
	}

	if e.config.Scan.AckTimeout > 0 {
		if e.ackTimer != nil {
			e.ackTimer.Stop()
		}
		e.ackTimer = time.AfterFunc(e.config.Scan.AckTimeout, e.Acknowledge)
	}
}

func (e *Engine) observeVerify(start time.Time) {
	if e.metrics == nil || !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(MetricVerifyLatency, e.now().Sub(start))
}

// Acknowledge describes the acknowledge operation and its observable behavior.
//
// Acknowledge clears a resolved scan so the next credential can be verified.
// Acknowledging an idle engine is a no-op.
//
// Acknowledge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Acknowledge() {
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateResolved {
		return
	}
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}
	e.state = StateIdle
}

// State returns the engine's current scan cycle position.
func (e *Engine) State() ScanState {
	if e == nil {
		return StateIdle
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastOutcome returns the most recently resolved outcome, or nil before the
// first scan. The outcome survives acknowledgment so operator displays can
// keep showing it.
func (e *Engine) LastOutcome() *Outcome {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// LoadManifest describes the load-manifest operation and its observable behavior.
//
// LoadManifest parses the raw manifest export, replaces the in-memory index,
// and persists a snapshot. A parse failure leaves the previous manifest in
// place and returns [ErrManifestUnreadable]. A persist failure keeps the new
// manifest in memory but reports the error so the operator can retry the
// save.
//
// LoadManifest may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) LoadManifest(ctx context.Context, raw []byte) (manifest.LoadReport, error) {
	if e == nil {
		return manifest.LoadReport{}, ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.manifest.Load(raw)
	if err != nil {
		e.emitAudit(ctx, auditEventManifestLoadFailed, false, "", "", ErrManifestUnreadable, nil)
		return manifest.LoadReport{}, fmt.Errorf("%w: %v", ErrManifestUnreadable, err)
	}

	e.manifestLoaded = true
	e.metricInc(MetricManifestLoaded)
	if e.metrics != nil && report.Skipped > 0 {
		e.metrics.Add(MetricManifestRecordsSkipped, uint64(report.Skipped))
	}
	e.emitAudit(ctx, auditEventManifestLoaded, true, "", "", nil, func() map[string]string {
		return map[string]string{
			"loaded":  fmt.Sprintf("%d", report.Loaded),
			"skipped": fmt.Sprintf("%d", report.Skipped),
		}
	})

	if err := e.persistManifest(ctx); err != nil {
		return report, fmt.Errorf("persist manifest snapshot: %w", err)
	}
	return report, nil
}

// ManifestSize returns the number of entries in the loaded manifest.
func (e *Engine) ManifestSize() int {
	if e == nil {
		return 0
	}
	return e.manifest.Size()
}

// AdmittedCount returns the number of ticket ids admitted so far.
func (e *Engine) AdmittedCount() int {
	if e == nil {
		return 0
	}
	return e.ledger.Size()
}

// Admissions returns a copy of all recorded admissions, sorted by ticket id.
func (e *Engine) Admissions() []ledger.Record {
	if e == nil {
		return nil
	}
	return e.ledger.Records()
}

// Purge describes the purge operation and its observable behavior.
//
// Purge wipes the admission ledger and the manifest, durable regions first.
// The admissions region goes before the manifest region so an interrupted
// purge can never leave stale admissions against a fresh manifest.
//
// Purge may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Purge(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Delete(ctx, storage.RegionAdmissions); err != nil {
		e.emitAudit(ctx, auditEventPurgeFailed, false, "", "", err, nil)
		return fmt.Errorf("purge admissions region: %w", err)
	}
	if err := e.store.Delete(ctx, storage.RegionManifest); err != nil {
		e.emitAudit(ctx, auditEventPurgeFailed, false, "", "", err, nil)
		return fmt.Errorf("purge manifest region: %w", err)
	}

	e.ledger.Clear()
	e.manifest.Clear()
	if e.ackTimer != nil {
		e.ackTimer.Stop()
		e.ackTimer = nil
	}
	e.state = StateIdle
	e.last = nil
	e.manifestLoaded = false

	e.metricInc(MetricPurge)
	e.emitAudit(ctx, auditEventPurgeCompleted, true, "", "", nil, nil)
	return nil
}

func (e *Engine) persistAdmissions(ctx context.Context) error {
	data, err := e.ledger.EncodeSnapshot()
	if err != nil {
		return err
	}
	return e.store.Save(ctx, storage.RegionAdmissions, data)
}

func (e *Engine) persistManifest(ctx context.Context) error {
	data, err := e.manifest.EncodeSnapshot()
	if err != nil {
		return err
	}
	return e.store.Save(ctx, storage.RegionManifest, data)
}

// restore rehydrates the manifest and ledger from durable storage at build
// time. Missing regions are a normal first boot.
func (e *Engine) restore(ctx context.Context) error {
	data, err := e.store.Load(ctx, storage.RegionManifest)
	switch {
	case err == nil:
		if err := e.manifest.RestoreSnapshot(data); err != nil {
			return err
		}
		e.manifestLoaded = true
	case errors.Is(err, storage.ErrNotFound):
	default:
		return err
	}

	data, err = e.store.Load(ctx, storage.RegionAdmissions)
	switch {
	case err == nil:
		if err := e.ledger.RestoreSnapshot(data); err != nil {
			return err
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		return err
	}

	return nil
}
