// Package journal defines the training session record and its closed
// vocabularies (activity, emphasis, energy).
//
// A Session is the unit of synchronization. Records are identified by a
// client-generated UID that is stable across devices, and carry an
// updated_at timestamp used as the logical clock for last-writer-wins
// conflict resolution. Deletion is modeled as a tombstone: the record
// stays in local storage with Deleted set so the deletion can propagate
// to other devices.
package journal

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// Activity is one of the closed set of training categories.
type Activity string

const (
	ActivityKarate  Activity = "karate"
	ActivityWeights Activity = "weights"
	ActivityRun     Activity = "run"
	ActivityRowing  Activity = "rowing"
	ActivityCardio  Activity = "cardio"
	ActivityRest    Activity = "rest"
)

// Activities lists all valid activity types in display order.
var Activities = []Activity{
	ActivityKarate,
	ActivityWeights,
	ActivityRun,
	ActivityRowing,
	ActivityCardio,
	ActivityRest,
}

// Emphasis describes what a session was mostly about.
type Emphasis string

const (
	EmphasisTechnical Emphasis = "technical"
	EmphasisPhysical  Emphasis = "physical"
	EmphasisMixed     Emphasis = "mixed"
)

// Emphases lists all valid session emphases.
var Emphases = []Emphasis{EmphasisTechnical, EmphasisPhysical, EmphasisMixed}

// EnergyLabels maps the 1-5 energy scale to its display labels.
var EnergyLabels = map[int]string{
	1: "Very tired",
	2: "Tired",
	3: "OK",
	4: "Good",
	5: "Sharp",
}

const (
	// MinTrainingMinutes is the minimum duration for a non-rest session.
	MinTrainingMinutes = 5
	// MaxSessionMinutes is the upper bound on a single session.
	MaxSessionMinutes = 300
	// HardRPEThreshold marks a session as hard when its RPE meets it.
	HardRPEThreshold = 7
)

// DateFormat is the wire and storage format for session dates.
const DateFormat = "2006-01-02"

// ErrInvalid is wrapped by all validation failures so callers can
// distinguish bad input from storage or transport errors.
var ErrInvalid = errors.New("invalid session")

// Session is a single training journal entry.
//
// The wire format matches the sync protocol: deleted travels as a 0/1
// integer, rpe is omitted when the session was never rated, and
// timestamps are RFC 3339 UTC.
type Session struct {
	// UID is the sync identity: client-generated, immutable, unique
	// across devices. The local autoincrement row id never leaves the
	// device.
	UID string `json:"uid"`

	Date     string   `json:"session_date"` // YYYY-MM-DD
	Activity Activity `json:"activity_type"`
	Duration int      `json:"duration_minutes"`
	Energy   int      `json:"energy_level"` // 1-5
	Emphasis Emphasis `json:"session_emphasis"`
	RPE      *int     `json:"rpe,omitempty"` // 1-10, rated after the fact
	Notes    string   `json:"notes"`

	// Deleted marks the record as a tombstone. Tombstones are kept
	// locally so the deletion propagates on the next push; applying a
	// remote tombstone removes the local row entirely.
	Deleted Flag `json:"deleted"`

	// UpdatedAt is the logical clock: advanced to now on every
	// mutation, compared under last-writer-wins when syncing.
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the session against the journal's entry rules.
// Tombstones are exempt from content validation.
func (s *Session) Validate() error {
	if s.Deleted {
		return nil
	}
	if !validActivity(s.Activity) {
		return fmt.Errorf("%w: unknown activity %q", ErrInvalid, s.Activity)
	}
	if !validEmphasis(s.Emphasis) {
		return fmt.Errorf("%w: unknown emphasis %q", ErrInvalid, s.Emphasis)
	}
	if _, err := time.Parse(DateFormat, s.Date); err != nil {
		return fmt.Errorf("%w: bad session date %q", ErrInvalid, s.Date)
	}
	if s.Duration < 0 || s.Duration > MaxSessionMinutes {
		return fmt.Errorf("%w: duration must be 0-%d minutes (got %d)", ErrInvalid, MaxSessionMinutes, s.Duration)
	}
	if s.Activity != ActivityRest && s.Duration < MinTrainingMinutes {
		return fmt.Errorf("%w: training sessions must be at least %d minutes (got %d)", ErrInvalid, MinTrainingMinutes, s.Duration)
	}
	if s.Energy < 1 || s.Energy > 5 {
		return fmt.Errorf("%w: energy level must be 1-5 (got %d)", ErrInvalid, s.Energy)
	}
	if s.RPE != nil && (*s.RPE < 1 || *s.RPE > 10) {
		return fmt.Errorf("%w: rpe must be 1-10 (got %d)", ErrInvalid, *s.RPE)
	}
	return nil
}

// Touch advances the logical clock to the current UTC time.
// Call it on every mutation before persisting.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// NewerThan reports whether this record wins a last-writer-wins
// comparison against other. Ties lose: the existing copy is kept.
func (s *Session) NewerThan(other *Session) bool {
	return s.UpdatedAt.After(other.UpdatedAt)
}

func validActivity(a Activity) bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

func validEmphasis(e Emphasis) bool {
	for _, known := range Emphases {
		if e == known {
			return true
		}
	}
	return false
}

// Flag is a boolean that travels as a 0/1 integer on the wire, which is
// how the sync endpoint encodes the tombstone column. JSON booleans are
// accepted on input for compatibility.
type Flag bool

// MarshalJSON encodes the flag as 0 or 1.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts 0/1 integers and true/false booleans.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "0", "false":
		*f = false
	case "1", "true":
		*f = true
	default:
		return fmt.Errorf("invalid deleted flag %q", data)
	}
	return nil
}
