package docstore

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"

	// DefaultOwnerField is used for collections that do not declare their own ownership field.
	DefaultOwnerField = "owner"
)

// Record is one document of a collection: a JSON-like mapping from field name to value.
// Records returned by the client always carry FieldID.
type Record map[string]any

// Snapshot is the creator's identity copied into a record at creation time.
// It is never re-synced with the profile it was taken from.
type Snapshot struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Block      string `json:"block"`
	FlatNumber string `json:"flatNumber"`
}

func (r Record) ID() string {
	return r.String(FieldID)
}

// CreatedAt returns the store-assigned creation time in epoch milliseconds, or 0 if unset.
func (r Record) CreatedAt() int64 {
	n, _ := asInt64(r[FieldCreatedAt])
	return n
}

func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Number returns a numeric field, accepting any of the numeric shapes a backend may decode.
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Owner decodes the ownership snapshot stored under field.
func (r Record) Owner(field string) (Snapshot, bool) {
	raw, ok := r[field]
	if !ok || raw == nil {
		return Snapshot{}, false
	}
	var s Snapshot
	if err := remarshal(raw, &s); err != nil {
		return Snapshot{}, false
	}
	return s, s.UID != ""
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	var out Record
	if err := remarshal(r, &out); err != nil {
		out = make(Record, len(r))
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}

// SortByCreatedDesc orders records most recent first. Records with equal timestamps are
// ordered by ascending id so the result is deterministic.
func SortByCreatedDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ci, cj := records[i].CreatedAt(), records[j].CreatedAt()
		if ci != cj {
			return ci > cj
		}
		return records[i].ID() < records[j].ID()
	})
}

// Decode converts a record into its concrete shape.
func Decode[T any](r Record) (T, error) {
	var out T
	if err := remarshal(r, &out); err != nil {
		return out, fmt.Errorf("decode record %q: %w", r.ID(), err)
	}
	return out, nil
}

// DecodeAll converts records into their concrete shape, preserving order.
func DecodeAll[T any](records []Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Fields flattens a typed value into the field mapping a backend stores.
func Fields(v any) (map[string]any, error) {
	var out map[string]any
	if err := remarshal(v, &out); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// normalize round-trips fields through JSON so every backend stores the same value shapes
// (numbers become float64, typed values such as Price take their wire form).
func normalize(fields map[string]any) (map[string]any, error) {
	return Fields(fields)
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
