package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// SnapshotVersion is the layout written by EncodeSnapshot.
const SnapshotVersion = 1

// Fields names the resource-specific keys of a snapshot's state object.
type Fields struct {
	Current string
	List    string
}

// Snapshot field names per resource.
var (
	SpeciesFields = Fields{Current: "currentSpecie", List: "speciesList"}
	BonesFields   = Fields{Current: "currentBone", List: "bonesList"}
)

type snapshot struct {
	Version int             `json:"version"`
	Key     string          `json:"key"`
	SavedAt time.Time       `json:"savedAt"`
	State   json.RawMessage `json:"state"`
}

// EncodeSnapshot serializes st under the current layout. Loading is always
// written as false and the error as its message.
func EncodeSnapshot[T any](key string, st types.StoreState[T], f Fields) ([]byte, error) {
	list := st.List
	if list == nil {
		list = []T{}
	}
	var errMsg *string
	if st.Err != nil {
		msg := st.Err.Error()
		errMsg = &msg
	}
	state := map[string]any{
		f.Current:    st.Current,
		f.List:       list,
		"pagination": st.Pagination,
		"total":      st.Total,
		"loading":    false,
		"error":      errMsg,
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshot{
		Version: SnapshotVersion,
		Key:     key,
		SavedAt: time.Now().UTC(),
		State:   raw,
	})
}

// DecodeSnapshot restores state from data. A document without a version
// field is the unversioned layout (version 0): the state object itself.
// Restored state is never loading.
func DecodeSnapshot[T any](data []byte, f Fields) (types.StoreState[T], error) {
	var zero types.StoreState[T]

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return zero, err
	}

	stateDoc := data
	if v, ok := top["version"]; ok {
		var version int
		if err := json.Unmarshal(v, &version); err != nil {
			return zero, fmt.Errorf("snapshot version: %w", err)
		}
		if version > SnapshotVersion || version < 0 {
			return zero, fmt.Errorf("%w: %d", types.ErrSnapshotVersion, version)
		}
		if version > 0 {
			stateDoc = top["state"]
		}
	}
	if len(stateDoc) == 0 || bytes.Equal(stateDoc, []byte("null")) {
		return types.StoreState[T]{List: []T{}}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(stateDoc, &fields); err != nil {
		return zero, fmt.Errorf("snapshot state: %w", err)
	}

	st := types.StoreState[T]{List: []T{}}
	if raw, ok := fields[f.Current]; ok && !isNull(raw) {
		var cur T
		if err := json.Unmarshal(raw, &cur); err != nil {
			return zero, fmt.Errorf("%s: %w", f.Current, err)
		}
		st.Current = &cur
	}
	if raw, ok := fields[f.List]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &st.List); err != nil {
			return zero, fmt.Errorf("%s: %w", f.List, err)
		}
	}
	if raw, ok := fields["pagination"]; ok && !isNull(raw) {
		var p types.Pagination
		if err := json.Unmarshal(raw, &p); err != nil {
			return zero, fmt.Errorf("pagination: %w", err)
		}
		st.Pagination = &p
	}
	if raw, ok := fields["total"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &st.Total); err != nil {
			return zero, fmt.Errorf("total: %w", err)
		}
	}
	if raw, ok := fields["error"]; ok {
		st.Err = decodeError(raw)
	}
	return st, nil
}

// decodeError accepts a message string or, from unversioned snapshots, an
// object that may carry a message.
func decodeError(raw json.RawMessage) error {
	if isNull(raw) {
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &types.PersistedError{Message: msg}
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return &types.PersistedError{Message: obj.Message}
	}
	return &types.PersistedError{Message: "unknown error"}
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
