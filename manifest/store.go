package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnreadable is returned by Load when the raw export cannot be parsed as a
// flat record collection at all. Individual bad records never trigger it; they
// are skipped and counted instead.
var ErrUnreadable = errors.New("manifest input unreadable")

// Entry is one authorized attendee, immutable once loaded. Attrs carries
// pass-through fields from the export that the verifier displays but does not
// interpret ("College", "Payment Method", ...).
type Entry struct {
	TicketID  string            `cbor:"ticket_id"`
	FirstName string            `cbor:"first_name"`
	LastName  string            `cbor:"last_name"`
	Email     string            `cbor:"email"`
	Phone     string            `cbor:"phone"`
	Attrs     map[string]string `cbor:"attrs,omitempty"`
}

// LoadReport summarizes one manifest ingestion. Skipped counts records dropped
// for an empty or duplicate normalized ticket id; duplicates resolve
// first-write-wins.
type LoadReport struct {
	Loaded  int
	Skipped int
}

// NormalizeTicketID applies the canonical ticket-id normalization: trim
// surrounding whitespace, uppercase. Every index write and every lookup goes
// through this function.
func NormalizeTicketID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Store is the in-memory ticket-id index over a loaded manifest.
//
// Store instances are safe for concurrent use; the enclosing engine
// additionally serializes Load and Clear against in-flight verifications.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewStore creates an empty manifest [Store].
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Known export key spellings. The registration system's JSON export uses the
// display-header form; raw registration records use camelCase.
var (
	ticketKeys = []string{"Ticket ID", "ticketId", "ticket_id", "uid"}
	firstKeys  = []string{"First Name", "firstName", "first_name"}
	lastKeys   = []string{"Last Name", "lastName", "last_name"}
	emailKeys  = []string{"Email", "email"}
	phoneKeys  = []string{"Phone", "phone"}
)

// Load describes the load operation and its observable behavior.
//
// Load parses the raw export (a JSON array of flat records), normalizes each
// ticket id, and replaces the index contents. Unknown fields per record are
// tolerated and preserved in [Entry.Attrs]. Load may return [ErrUnreadable]
// when the input is not parseable as the expected structure.
func (s *Store) Load(raw []byte) (LoadReport, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return LoadReport{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	entries := make(map[string]*Entry, len(records))
	var report LoadReport

	for _, record := range records {
		entry, consumed := entryFromRecord(record)
		if entry.TicketID == "" {
			report.Skipped++
			continue
		}
		if _, exists := entries[entry.TicketID]; exists {
			// First-write-wins: later duplicates are dropped, not merged.
			report.Skipped++
			continue
		}

		for key, value := range record {
			if consumed[key] {
				continue
			}
			if entry.Attrs == nil {
				entry.Attrs = make(map[string]string)
			}
			entry.Attrs[key] = stringifyAttr(value)
		}

		entries[entry.TicketID] = entry
		report.Loaded++
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return report, nil
}

// Lookup describes the lookup operation and its observable behavior.
//
// Lookup normalizes the given ticket id and returns the matching entry, if
// any. Matching is exact on the normalized id; there is no fuzzy or partial
// matching.
func (s *Store) Lookup(ticketID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[NormalizeTicketID(ticketID)]
	return entry, ok
}

// Entries returns a copy of all loaded entries, sorted by ticket id.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, *entry)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TicketID < entries[j].TicketID
	})
	return entries
}

// Size returns the number of loaded entries.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear empties the index. Used only by an explicit purge.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*Entry)
	s.mu.Unlock()
}

func entryFromRecord(record map[string]any) (*Entry, map[string]bool) {
	consumed := make(map[string]bool, 5)

	pick := func(keys []string) string {
		for _, key := range keys {
			value, ok := record[key]
			if !ok {
				continue
			}
			consumed[key] = true
			if str, ok := value.(string); ok {
				return str
			}
			return stringifyAttr(value)
		}
		return ""
	}

	entry := &Entry{
		FirstName: pick(firstKeys),
		LastName:  pick(lastKeys),
		Email:     pick(emailKeys),
		Phone:     pick(phoneKeys),
	}
	entry.TicketID = NormalizeTicketID(pick(ticketKeys))
	return entry, consumed
}

func stringifyAttr(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		// JSON numbers; keep integral values free of the ".000000" suffix.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
