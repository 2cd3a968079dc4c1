package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
)

// Valid reports whether t is a known column type.
func (t ColumnType) Valid() bool {
	return t == ColumnText || t == ColumnNumber
}

type Column struct {
	Key      string
	Title    string
	Type     ColumnType
	Sortable bool
}

// Label returns the header text for the column.
func (c Column) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

// Schema is the ordered column set of one dashboard.
type Schema []Column

func (s Schema) Column(key string) (Column, bool) {
	for _, c := range s {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (s Schema) Has(key string) bool {
	_, ok := s.Column(key)
	return ok
}

func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, c := range s {
		keys[i] = c.Key
	}
	return keys
}

// Index returns the position of key in the schema, or -1.
func (s Schema) Index(key string) int {
	for i, c := range s {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Record maps column keys to cell values.
type Record map[string]Value

// Get returns the value for key. A key the record does not carry reads as
// an empty value.
func (r Record) Get(key string) Value {
	return r[key]
}

// Dataset is the loaded content of one dashboard.
type Dataset struct {
	Name    string
	Schema  Schema
	Records []Record
	// UpdatedAt is when the producer last wrote the data; zero if unknown.
	UpdatedAt time.Time
	Source    string
	// Stale is set when the data comes from an expired cache snapshot
	// because the source could not be reached.
	Stale bool
}

// ParseRecords decodes a data.json payload: a JSON array of flat objects.
// It also returns the keys in first-seen order for schema inference.
func ParseRecords(data []byte) ([]Record, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '['); err != nil {
		return nil, nil, err
	}

	var records []Record
	seen := make(map[string]bool)
	var keys []string
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, nil, err
		}
		rec := make(Record)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, nil, fmt.Errorf("unexpected token %v", tok)
			}
			var v Value
			if err := dec.Decode(&v); err != nil {
				return nil, nil, fmt.Errorf("field %q: %w", key, err)
			}
			rec[key] = v
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, nil, err
	}
	return records, keys, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// InferSchema builds a schema from the records themselves: every key becomes
// a sortable column, typed as number when all of its non-empty values are
// numeric.
func InferSchema(keys []string, records []Record) Schema {
	schema := make(Schema, 0, len(keys))
	for _, k := range keys {
		numeric := false
		for _, r := range records {
			v := r.Get(k)
			if v.IsEmpty() {
				continue
			}
			if v.Kind() != KindNumber {
				numeric = false
				break
			}
			numeric = true
		}
		typ := ColumnText
		if numeric {
			typ = ColumnNumber
		}
		schema = append(schema, Column{Key: k, Type: typ, Sortable: true})
	}
	return schema
}
