package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
)

// Value is a single scalar cell of a record. The zero Value is empty.
type Value struct {
	kind ValueKind
	text string
	num  float64
}

func Empty() Value { return Value{} }

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether the cell has no content. An empty string counts as empty.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty || (v.kind == KindText && v.text == "")
}

// Float returns the numeric value of the cell. Text cells are parsed; ok is
// false for empty cells and for text that is not a number.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String is the representation searched by column filters and shown in tables.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.num)
	}
	return []byte("null"), nil
}

// UnmarshalJSON flattens any JSON value into a scalar: null becomes empty,
// booleans become "true"/"false", nested objects and arrays are kept as
// compact JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		*v = Empty()
		return nil
	case trimmed == "true" || trimmed == "false":
		*v = Text(trimmed)
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case trimmed[0] == '{' || trimmed[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Text(buf.String())
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return err
	}
	*v = Number(f)
	return nil
}
