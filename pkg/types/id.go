package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies an entity on the backend. Backends emit either numeric or
// string identifiers; both decode into ID.
type ID string

// String returns the identifier as used in URL paths.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// numeric reports whether the identifier is a plain non-negative integer
// that is valid as a JSON number.
func (id ID) numeric() bool {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON writes identifiers made only of digits, without a leading zero,
// as JSON numbers and everything else as JSON strings. A string "7" is
// therefore written as the number 7; Specie and Bone keep such a member in
// Extra so a decoded record is still written back as sent.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, data)
	}
	*id = ID(n.String())
	return nil
}

// ParseID validates a user-supplied identifier.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", ErrInvalidID
	}
	return ID(s), nil
}

// IDFromInt converts an integer identifier.
func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}
