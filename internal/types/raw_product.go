// Package types provides type definitions for structured data used throughout the site-compiler system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawProduct is the extractor's output for a single product-detail URL.
// Alias fields (Name/ProductName/Title, SKU/ItemNumber/ProductNumber/ModelNumber)
// are kept as found; resolving them is the normalizer's job.
type RawProduct struct {
	URL string `json:"url"`

	Name        string `json:"name,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Title       string `json:"title,omitempty"`

	Price       string   `json:"price,omitempty"` // Free-form, currency symbol retained
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"` // Absolute URLs in document order

	SKU           string `json:"sku,omitempty"`
	ItemNumber    string `json:"itemNumber,omitempty"`
	ProductNumber string `json:"productNumber,omitempty"`
	ModelNumber   string `json:"modelNumber,omitempty"`

	Specs Specs `json:"specs,omitempty"`

	Brand        string   `json:"brand,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Category     string   `json:"category,omitempty"`
	Features     []string `json:"features,omitempty"`
	Content      string   `json:"content,omitempty"`
}

// SpecEntry is a single label/value pair from a product specification block.
type SpecEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Specs is an ordered label → value mapping. It serializes as a JSON object in
// insertion order and accepts either an object or an array of {key,value} pairs.
type Specs []SpecEntry

// Get returns the value for key, compared case-insensitively.
func (s Specs) Get(key string) (string, bool) {
	for _, e := range s {
		if strings.EqualFold(e.Key, key) {
			return e.Value, true
		}
	}
	return "", false
}

// Has reports whether key is already present.
func (s Specs) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Add appends key/value unless the key is blank or already present.
// Returns the (possibly unchanged) slice and whether the entry was added.
func (s Specs) Add(key, value string) (Specs, bool) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" || s.Has(key) {
		return s, false
	}
	return append(s, SpecEntry{Key: key, Value: value}), true
}

// Map converts the specs to a plain map. Blank keys and values are dropped and
// the first of two case-insensitively equal keys wins.
func (s Specs) Map() map[string]string {
	out := make(map[string]string, len(s))
	seen := make(map[string]bool, len(s))
	for _, e := range s {
		k := strings.TrimSpace(e.Key)
		v := strings.TrimSpace(e.Value)
		if k == "" || v == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out[k] = v
	}
	return out
}

// MarshalJSON writes the specs as an object, preserving order.
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object, an array of {key,value} (or {label,value},
// {name,value}) pairs, or null. Any other shape decodes to empty specs without
// an error.
func (s *Specs) UnmarshalJSON(data []byte) error {
	*s = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '{':
		*s = decodeSpecObject(trimmed)
	case '[':
		*s = decodeSpecArray(trimmed)
	}
	return nil
}

func decodeSpecObject(data []byte) Specs {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil
	}

	var out Specs
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, ok := tok.(string)
		if !ok {
			return out
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out
		}
		out, _ = out.Add(key, rawToString(raw))
	}
	return out
}

func decodeSpecArray(data []byte) Specs {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	var out Specs
	for _, item := range items {
		key := ""
		for _, field := range []string{"key", "label", "name"} {
			if raw, ok := item[field]; ok {
				key = rawToString(raw)
				break
			}
		}
		value := ""
		if raw, ok := item["value"]; ok {
			value = rawToString(raw)
		}
		out, _ = out.Add(key, value)
	}
	return out
}

// rawToString renders a JSON scalar as a plain string. Objects and arrays are
// kept as their compact JSON text.
func rawToString(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
