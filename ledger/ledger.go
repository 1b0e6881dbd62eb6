package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/solarspot/gatepass/manifest"
)

// Record is one granted admission. AdmittedAt is the wall-clock time the
// grant was decided, kept for audit exports.
type Record struct {
	TicketID   string
	AdmittedAt time.Time
}

// Ledger is the in-memory at-most-once admission set.
//
// Ledger instances are safe for concurrent use; the enclosing engine
// additionally serializes admissions against purges and restores.
type Ledger struct {
	mu       sync.RWMutex
	admitted map[string]Record
}

// New creates an empty [Ledger].
func New() *Ledger {
	return &Ledger{admitted: make(map[string]Record)}
}

// HasAdmitted reports whether the ticket id has already been granted entry.
// The id is normalized before the check.
func (l *Ledger) HasAdmitted(ticketID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.admitted[manifest.NormalizeTicketID(ticketID)]
	return ok
}

// RecordAdmission describes the record-admission operation and its observable
// behavior.
//
// RecordAdmission marks the ticket id as admitted at the given time. A
// repeated call for an id already present keeps the original timestamp; the
// first admission is the one of record.
func (l *Ledger) RecordAdmission(ticketID string, at time.Time) {
	id := manifest.NormalizeTicketID(ticketID)
	if id == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.admitted[id]; exists {
		return
	}
	l.admitted[id] = Record{TicketID: id, AdmittedAt: at}
}

// Remove deletes an admission record. It exists solely so the engine can roll
// back a grant whose durable persist failed; the next presentation of the
// same credential is then eligible again.
func (l *Ledger) Remove(ticketID string) {
	l.mu.Lock()
	delete(l.admitted, manifest.NormalizeTicketID(ticketID))
	l.mu.Unlock()
}

// Size returns the number of admitted ticket ids.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.admitted)
}

// Records returns a copy of all admissions, sorted by ticket id.
func (l *Ledger) Records() []Record {
	l.mu.RLock()
	records := make([]Record, 0, len(l.admitted))
	for _, record := range l.admitted {
		records = append(records, record)
	}
	l.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].TicketID < records[j].TicketID
	})
	return records
}

// Clear empties the ledger. Used only by an explicit purge.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.admitted = make(map[string]Record)
	l.mu.Unlock()
}
