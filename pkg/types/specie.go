package types

import (
	"encoding/json"
	"time"
)

// Specie is an animal species registered in the lab catalogue. The backend
// owns the record's shape: members the fields below cannot hold as sent are
// kept in Extra and written back unchanged.
type Specie struct {
	ID             ID         `json:"id"`
	Name           string     `json:"name"`
	ScientificName string     `json:"scientificName,omitempty"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *Specie) members() []member {
	return []member{
		{key: "id", dst: &s.ID},
		{key: "name", dst: &s.Name},
		{key: "scientificName", dst: &s.ScientificName, omitEmpty: true},
		{key: "description", dst: &s.Description, omitEmpty: true},
		{key: "createdAt", dst: &s.CreatedAt, omitEmpty: true},
		{key: "updatedAt", dst: &s.UpdatedAt, omitEmpty: true},
	}
}

// EntityID implements Entity.
func (s Specie) EntityID() ID { return s.ID }

func (s Specie) MarshalJSON() ([]byte, error) {
	return encodeRecord(s.members(), s.Extra)
}

func (s *Specie) UnmarshalJSON(data []byte) error {
	*s = Specie{}
	extra, err := decodeRecord(data, s.members())
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

// Clone returns a copy sharing no pointers or maps with s.
func (s Specie) Clone() Specie {
	s.CreatedAt = cloneTime(s.CreatedAt)
	s.UpdatedAt = cloneTime(s.UpdatedAt)
	s.Extra = cloneExtra(s.Extra)
	return s
}

// SpecieInput is the payload accepted by create and update calls.
type SpecieInput struct {
	Name           string `json:"name,omitempty"`
	ScientificName string `json:"scientificName,omitempty"`
	Description    string `json:"description,omitempty"`
}
