package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// member binds one JSON object member to a typed field. dst points at the
// field and is one of *ID, *string, *int, *bool or **time.Time.
type member struct {
	key       string
	dst       any
	omitEmpty bool
}

// decodeRecord fills the typed fields of members from the JSON object in
// data. It returns the members no field represents exactly, as received:
// unknown keys, values that do not fit their field, and values the field
// would not write back byte for byte.
func decodeRecord(data []byte, members []member) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for _, m := range members {
		raw, ok := obj[m.key]
		if !ok {
			continue
		}
		if err := decodeMember(raw, m.dst); err != nil {
			continue
		}
		enc, written, err := encodeMember(m)
		if err == nil && written && sameJSON(raw, enc) {
			delete(obj, m.key)
		}
	}
	if len(obj) == 0 {
		return nil, nil
	}
	return obj, nil
}

// encodeRecord writes members in order, then the remaining extra members
// sorted by key. A typed field still holding what its extra value decodes to
// is written as the extra value, so untouched records round-trip unchanged.
func encodeRecord(members []member, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	n := 0
	write := func(key string, value []byte) {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('{')
	typed := make(map[string]bool, len(members))
	for _, m := range members {
		typed[m.key] = true
		if raw, ok := extra[m.key]; ok && unchanged(raw, m) {
			write(m.key, raw)
			continue
		}
		enc, written, err := encodeMember(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.key, err)
		}
		if written {
			write(m.key, enc)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(extra)) {
		if !typed[key] {
			write(key, extra[key])
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeMember(m member) (json.RawMessage, bool, error) {
	v := reflect.ValueOf(m.dst).Elem()
	if m.omitEmpty && v.IsZero() {
		return nil, false, nil
	}
	data, err := json.Marshal(v.Interface())
	return data, err == nil, err
}

// unchanged reports whether the field still holds what raw decodes to. A raw
// value the field cannot hold decodes to the zero value.
func unchanged(raw json.RawMessage, m member) bool {
	fresh := reflect.New(reflect.TypeOf(m.dst).Elem())
	_ = decodeMember(raw, fresh.Interface())
	cur := reflect.ValueOf(m.dst).Elem().Interface()
	if t, ok := cur.(*time.Time); ok {
		f := fresh.Elem().Interface().(*time.Time)
		if t == nil || f == nil {
			return t == nil && f == nil
		}
		return t.Equal(*f)
	}
	return reflect.DeepEqual(fresh.Elem().Interface(), cur)
}

func decodeMember(raw json.RawMessage, dst any) error {
	switch d := dst.(type) {
	case **time.Time:
		t, err := parseTimestamp(raw)
		if err != nil {
			return err
		}
		*d = t
	case *int:
		n, err := looseInt(raw)
		if err != nil {
			return err
		}
		*d = n
	case *bool:
		b, err := looseBool(raw)
		if err != nil {
			return err
		}
		*d = b
	default:
		return json.Unmarshal(raw, dst)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts RFC 3339 and the common SQL-style layouts, or a
// Unix time in seconds or milliseconds. Times without a zone are UTC.
func parseTimestamp(raw json.RawMessage) (*time.Time, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("unrecognized time %q", s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	secs, err := n.Int64()
	if err != nil {
		return nil, err
	}
	var t time.Time
	if secs > 1e12 || secs < -1e12 {
		t = time.UnixMilli(secs).UTC()
	} else {
		t = time.Unix(secs, 0).UTC()
	}
	return &t, nil
}

// looseInt accepts a JSON integer or a string holding one.
func looseInt(raw json.RawMessage) (int, error) {
	if isNullJSON(raw) {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	var n int
	err := json.Unmarshal(raw, &n)
	return n, err
}

// looseBool accepts a JSON boolean or a string holding one.
func looseBool(raw json.RawMessage) (bool, error) {
	if isNullJSON(raw) {
		return false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseBool(strings.TrimSpace(s))
	}
	var b bool
	err := json.Unmarshal(raw, &b)
	return b, err
}

func sameJSON(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

func isNullJSON(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = slices.Clone(v)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
