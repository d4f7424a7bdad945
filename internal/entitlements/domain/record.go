package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// Record is the persisted entitlement state: the granted features plus an
// optional absolute expiration shared by all of them.
//
// A record whose expiration is at or before now is semantically empty.
type Record struct {
	Features []Feature
	ExpireAt *time.Time
}

// recordJSON is the wire shape: {"features": [...], "expireAt": <epoch ms>}.
type recordJSON struct {
	Features []string `json:"features"`
	ExpireAt *int64   `json:"expireAt,omitempty"`
}

// NewRecord builds a record with de-duplicated, sorted features.
func NewRecord(features []Feature, expireAt *time.Time) *Record {
	r := &Record{Features: normalizeFeatures(features)}
	if expireAt != nil {
		t := *expireAt
		r.ExpireAt = &t
	}
	return r
}

// ExpiredAt reports whether the record's expiration is at or before now.
// A record without expiration never expires.
func (r *Record) ExpiredAt(now time.Time) bool {
	if r == nil || r.ExpireAt == nil {
		return false
	}
	return !now.Before(*r.ExpireAt)
}

// Has reports whether the record contains f, ignoring expiration.
func (r *Record) Has(f Feature) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Features, f)
}

// MarshalJSON encodes the record using epoch milliseconds for expireAt.
func (r Record) MarshalJSON() ([]byte, error) {
	wire := recordJSON{Features: make([]string, 0, len(r.Features))}
	for _, f := range r.Features {
		wire.Features = append(wire.Features, string(f))
	}
	if r.ExpireAt != nil {
		ms := r.ExpireAt.UnixMilli()
		wire.ExpireAt = &ms
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the wire shape. Duplicate features are collapsed.
func (r *Record) UnmarshalJSON(data []byte) error {
	var wire recordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	features := make([]Feature, 0, len(wire.Features))
	for _, f := range wire.Features {
		features = append(features, Feature(f))
	}
	r.Features = normalizeFeatures(features)
	r.ExpireAt = nil
	if wire.ExpireAt != nil {
		t := time.UnixMilli(*wire.ExpireAt)
		r.ExpireAt = &t
	}
	return nil
}

// EncodeRecord serializes a record for a durable backend.
func EncodeRecord(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses a serialized record.
func DecodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func normalizeFeatures(features []Feature) []Feature {
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if f == "" || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
