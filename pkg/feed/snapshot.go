package feed

import (
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Snapshot is a point-in-time read of one subtree of the remote store.
// It wraps the decoded JSON value and offers typed, nil-safe accessors;
// a missing child yields an empty Snapshot, never a panic.
type Snapshot struct {
	// Key is the child key this snapshot was reached by ("" for a root).
	Key string

	val any
}

// NewSnapshot wraps an already-decoded JSON value.
func NewSnapshot(key string, val any) Snapshot {
	return Snapshot{Key: key, val: val}
}

// Exists reports whether the subtree holds any value.
func (s Snapshot) Exists() bool {
	return s.val != nil
}

// Raw returns the underlying decoded value.
func (s Snapshot) Raw() any {
	return s.val
}

// Child returns the named child subtree, or an empty Snapshot.
func (s Snapshot) Child(key string) Snapshot {
	if m, ok := s.val.(map[string]any); ok {
		return Snapshot{Key: key, val: m[key]}
	}
	return Snapshot{Key: key}
}

// Children returns the child snapshots in deterministic (key-sorted)
// order. Array values use their index order.
func (s Snapshot) Children() []Snapshot {
	switch v := s.val.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Snapshot, 0, len(keys))
		for _, k := range keys {
			out = append(out, Snapshot{Key: k, val: v[k]})
		}
		return out
	case []any:
		out := make([]Snapshot, 0, len(v))
		for i, item := range v {
			if item == nil {
				continue // realtime DBs leave holes in sparse arrays
			}
			out = append(out, Snapshot{Key: cast.ToString(i), val: item})
		}
		return out
	}
	return nil
}

// Len is the number of direct children.
func (s Snapshot) Len() int {
	switch v := s.val.(type) {
	case map[string]any:
		return len(v)
	case []any:
		return len(v)
	}
	return 0
}

// String coerces the value to a string ("" when absent).
func (s Snapshot) String() string { return cast.ToString(s.val) }

// Int coerces the value to an int (0 when absent).
func (s Snapshot) Int() int { return cast.ToInt(s.val) }

// Float coerces the value to a float64 (0 when absent).
func (s Snapshot) Float() float64 { return cast.ToFloat64(s.val) }

// Bool coerces the value to a bool (false when absent).
func (s Snapshot) Bool() bool { return cast.ToBool(s.val) }

// Decode maps the subtree onto out using its json tags. Decoding is
// weakly typed to absorb the loose scalars the store hands back
// (prices stored as strings, ratings as ints, and so on).
func (s Snapshot) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(s.val)
}
