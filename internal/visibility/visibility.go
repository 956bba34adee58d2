// Package visibility holds the per-property policy that decides which auction fields a
// bidder-role viewer may see.
//
// Settings is a fixed six-flag record. Every way of obtaining one (Normalize, Scan, Merge)
// yields a fully populated value; there is no partial state.
package visibility

import "encoding/json"

// Field names a property attribute guarded by the policy.
type Field string

const (
	FieldMinBid         Field = "minBid"
	FieldCurrentBid     Field = "currentBid"
	FieldBidHistory     Field = "bidHistory"
	FieldPropertyStatus Field = "propertyStatus"
	FieldBidderList     Field = "bidderList"
	FieldDocuments      Field = "documents"
)

// AllFields lists the six policy fields in their canonical order.
func AllFields() []Field {
	return []Field{
		FieldMinBid,
		FieldCurrentBid,
		FieldBidHistory,
		FieldPropertyStatus,
		FieldBidderList,
		FieldDocuments,
	}
}

// Settings is the visibility policy of one property (or a county user's defaults).
type Settings struct {
	MinBid         bool `json:"minBid"`
	CurrentBid     bool `json:"currentBid"`
	BidHistory     bool `json:"bidHistory"`
	PropertyStatus bool `json:"propertyStatus"`
	BidderList     bool `json:"bidderList"`
	Documents      bool `json:"documents"`
}

// Defaults returns the settings applied when nothing usable was supplied.
func Defaults() Settings {
	return Settings{
		MinBid:         true,
		CurrentBid:     true,
		BidHistory:     false,
		PropertyStatus: true,
		BidderList:     false,
		Documents:      false,
	}
}

// Get returns the flag for f. Unknown fields are never visible.
func (s Settings) Get(f Field) bool {
	switch f {
	case FieldMinBid:
		return s.MinBid
	case FieldCurrentBid:
		return s.CurrentBid
	case FieldBidHistory:
		return s.BidHistory
	case FieldPropertyStatus:
		return s.PropertyStatus
	case FieldBidderList:
		return s.BidderList
	case FieldDocuments:
		return s.Documents
	}
	return false
}

func (s *Settings) set(f Field, v bool) {
	switch f {
	case FieldMinBid:
		s.MinBid = v
	case FieldCurrentBid:
		s.CurrentBid = v
	case FieldBidHistory:
		s.BidHistory = v
	case FieldPropertyStatus:
		s.PropertyStatus = v
	case FieldBidderList:
		s.BidderList = v
	case FieldDocuments:
		s.Documents = v
	}
}

// Evaluate reports whether a bidder may see field f under settings.
// County owners see everything; callers apply that rule before consulting the policy.
func Evaluate(settings Settings, f Field) bool {
	return settings.Get(f)
}

// ObjectOf returns raw as a JSON object. Strings and byte slices are decoded first;
// anything that is not an object gives nil.
func ObjectOf(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case string:
		return objectFromJSON([]byte(v))
	case []byte:
		return objectFromJSON(v)
	case json.RawMessage:
		return objectFromJSON(v)
	}
	return nil
}

func objectFromJSON(data []byte) map[string]any {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil
	}
	obj, _ := decoded.(map[string]any)
	return obj
}

// Normalize repairs any input into a complete Settings value. It never fails:
//   - nil, arrays, numbers, booleans and unknown types give Defaults()
//   - strings and byte slices are decoded as JSON; undecodable input gives Defaults()
//   - objects are coerced key by key, falling back to each key's own default
func Normalize(raw any) Settings {
	switch v := raw.(type) {
	case nil:
		return Defaults()
	case Settings:
		return v
	case *Settings:
		if v == nil {
			return Defaults()
		}
		return *v
	case map[string]bool:
		obj := make(map[string]any, len(v))
		for k, b := range v {
			obj[k] = b
		}
		return fromObject(obj)
	case map[string]any:
		return fromObject(v)
	case string:
		return fromJSON([]byte(v))
	case []byte:
		return fromJSON(v)
	case json.RawMessage:
		return fromJSON(v)
	}
	return Defaults()
}

func fromJSON(data []byte) Settings {
	obj := objectFromJSON(data)
	if obj == nil {
		return Defaults()
	}
	return fromObject(obj)
}

func fromObject(obj map[string]any) Settings {
	defaults := Defaults()
	out := defaults
	for _, f := range AllFields() {
		out.set(f, coerce(obj[string(f)], defaults.Get(f)))
	}
	return out
}

// Merge applies a partial update. Only keys present in patch change; each supplied value
// is coerced like Normalize does, so an invalid value resets that key to its default.
func (s Settings) Merge(patch map[string]any) Settings {
	defaults := Defaults()
	out := s
	for _, f := range AllFields() {
		v, ok := patch[string(f)]
		if !ok {
			continue
		}
		out.set(f, coerce(v, defaults.Get(f)))
	}
	return out
}

func coerce(v any, fallback bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch t {
		case "1", "true":
			return true
		case "0", "false":
			return false
		}
	case float64:
		return numeric(t, fallback)
	case float32:
		return numeric(float64(t), fallback)
	case int:
		return numeric(float64(t), fallback)
	case int64:
		return numeric(float64(t), fallback)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return numeric(f, fallback)
		}
	}
	return fallback
}

func numeric(f float64, fallback bool) bool {
	switch f {
	case 1:
		return true
	case 0:
		return false
	}
	return fallback
}
