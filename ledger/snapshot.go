package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/solarspot/gatepass/manifest"
)

// CurrentSnapshotVersion is the schema version written by EncodeSnapshot.
const CurrentSnapshotVersion = 1

// ErrSnapshotCorrupt is returned by RestoreSnapshot when the stored snapshot
// cannot be decoded or carries an unknown schema version.
var ErrSnapshotCorrupt = errors.New("admission snapshot corrupt")

type snapshotRecord struct {
	TicketID   string `cbor:"ticket_id"`
	AdmittedAt int64  `cbor:"admitted_at"` // unix seconds
}

type snapshot struct {
	Version uint8            `cbor:"v"`
	Records []snapshotRecord `cbor:"records"`
}

// EncodeSnapshot serializes the admission set for durable storage. Records
// are sorted by ticket id so the snapshot bytes are stable for identical
// contents.
func (l *Ledger) EncodeSnapshot() ([]byte, error) {
	records := l.Records()

	wire := make([]snapshotRecord, len(records))
	for i, record := range records {
		wire[i] = snapshotRecord{
			TicketID:   record.TicketID,
			AdmittedAt: record.AdmittedAt.Unix(),
		}
	}

	return cbor.Marshal(snapshot{Version: CurrentSnapshotVersion, Records: wire})
}

// RestoreSnapshot replaces the admission set with a previously encoded
// snapshot. Used at startup so a verifier restarted mid-event keeps refusing
// credentials it already admitted.
func (l *Ledger) RestoreSnapshot(data []byte) error {
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snap.Version != CurrentSnapshotVersion {
		return fmt.Errorf("%w: unknown version %d", ErrSnapshotCorrupt, snap.Version)
	}

	admitted := make(map[string]Record, len(snap.Records))
	for _, record := range snap.Records {
		id := manifest.NormalizeTicketID(record.TicketID)
		if id == "" {
			continue
		}
		if _, exists := admitted[id]; exists {
			continue
		}
		admitted[id] = Record{TicketID: id, AdmittedAt: time.Unix(record.AdmittedAt, 0)}
	}

	l.mu.Lock()
	l.admitted = admitted
	l.mu.Unlock()

	return nil
}
