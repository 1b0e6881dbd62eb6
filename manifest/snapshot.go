package manifest

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CurrentSnapshotVersion is the schema version written by EncodeSnapshot.
const CurrentSnapshotVersion = 1

// ErrSnapshotCorrupt is returned by RestoreSnapshot when the stored snapshot
// cannot be decoded or carries an unknown schema version.
var ErrSnapshotCorrupt = errors.New("manifest snapshot corrupt")

type snapshot struct {
	Version uint8   `cbor:"v"`
	Entries []Entry `cbor:"entries"`
}

// EncodeSnapshot serializes the index for durable storage. Entries are sorted
// by ticket id so the snapshot bytes are stable for identical contents.
func (s *Store) EncodeSnapshot() ([]byte, error) {
	return cbor.Marshal(snapshot{Version: CurrentSnapshotVersion, Entries: s.Entries()})
}

// RestoreSnapshot replaces the index contents with a previously encoded
// snapshot. Used at startup so a verifier restarted mid-event does not need a
// fresh manifest upload.
func (s *Store) RestoreSnapshot(data []byte) error {
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snap.Version != CurrentSnapshotVersion {
		return fmt.Errorf("%w: unknown version %d", ErrSnapshotCorrupt, snap.Version)
	}

	entries := make(map[string]*Entry, len(snap.Entries))
	for i := range snap.Entries {
		entry := snap.Entries[i]
		entry.TicketID = NormalizeTicketID(entry.TicketID)
		if entry.TicketID == "" {
			continue
		}
		if _, exists := entries[entry.TicketID]; exists {
			continue
		}
		entries[entry.TicketID] = &entry
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return nil
}
