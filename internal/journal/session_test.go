package journal

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validSession() *Session {
	return &Session{
		UID:       "test-uid",
		Date:      "2025-03-10",
		Activity:  ActivityKarate,
		Duration:  60,
		Energy:    4,
		Emphasis:  EmphasisTechnical,
		Notes:     "good snap on gyaku-zuki",
		UpdatedAt: time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Session)
		wantErr bool
	}{
		{"valid", func(s *Session) {}, false},
		{"unknown activity", func(s *Session) { s.Activity = "swimming" }, true},
		{"unknown emphasis", func(s *Session) { s.Emphasis = "spiritual" }, true},
		{"bad date", func(s *Session) { s.Date = "10/03/2025" }, true},
		{"negative duration", func(s *Session) { s.Duration = -10 }, true},
		{"too long", func(s *Session) { s.Duration = 301 }, true},
		{"training below minimum", func(s *Session) { s.Duration = 3 }, true},
		{"rest with zero duration", func(s *Session) {
			s.Activity = ActivityRest
			s.Duration = 0
		}, false},
		{"energy out of range", func(s *Session) { s.Energy = 6 }, true},
		{"rpe out of range", func(s *Session) {
			rpe := 11
			s.RPE = &rpe
		}, true},
		{"rated session", func(s *Session) {
			rpe := 8
			s.RPE = &rpe
		}, false},
		{"tombstone skips content checks", func(s *Session) {
			s.Deleted = true
			s.Duration = -1
			s.Energy = 99
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("validation error does not wrap ErrInvalid: %v", err)
			}
		})
	}
}

func TestNewerThan(t *testing.T) {
	older := validSession()
	newer := validSession()
	newer.UpdatedAt = older.UpdatedAt.Add(time.Second)

	if !newer.NewerThan(older) {
		t.Error("expected later timestamp to win")
	}
	if older.NewerThan(newer) {
		t.Error("expected earlier timestamp to lose")
	}

	// Ties favor the existing copy.
	tie := validSession()
	tie.UpdatedAt = older.UpdatedAt
	if tie.NewerThan(older) {
		t.Error("expected equal timestamps to lose")
	}
}

func TestFlagWireFormat(t *testing.T) {
	s := validSession()
	s.Deleted = true

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"deleted":1`) {
		t.Errorf("tombstone should encode as 1, got: %s", data)
	}

	for _, raw := range []string{`0`, `1`, `true`, `false`} {
		var f Flag
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			t.Errorf("unmarshal %s failed: %v", raw, err)
		}
	}
	var f Flag
	if err := json.Unmarshal([]byte(`"yes"`), &f); err == nil {
		t.Error("expected error for non 0/1 flag")
	}
}

func TestTouchAdvancesClock(t *testing.T) {
	s := validSession()
	before := s.UpdatedAt
	time.Sleep(time.Millisecond)
	s.Touch()
	if !s.UpdatedAt.After(before) {
		t.Error("Touch did not advance updated_at")
	}
	if s.UpdatedAt.Location() != time.UTC {
		t.Error("Touch must record UTC time")
	}
}
