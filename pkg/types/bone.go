package types

import (
	"encoding/json"
	"time"
)

// Bone is a skeletal piece catalogued for a specie. Like Specie, members the
// fields cannot hold as sent are kept in Extra.
type Bone struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	SpecieID    ID         `json:"specieId,omitempty"`
	Region      string     `json:"region,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (b *Bone) members() []member {
	return []member{
		{key: "id", dst: &b.ID},
		{key: "name", dst: &b.Name},
		{key: "specieId", dst: &b.SpecieID, omitEmpty: true},
		{key: "region", dst: &b.Region, omitEmpty: true},
		{key: "description", dst: &b.Description, omitEmpty: true},
		{key: "createdAt", dst: &b.CreatedAt, omitEmpty: true},
		{key: "updatedAt", dst: &b.UpdatedAt, omitEmpty: true},
	}
}

// EntityID implements Entity.
func (b Bone) EntityID() ID { return b.ID }

func (b Bone) MarshalJSON() ([]byte, error) {
	return encodeRecord(b.members(), b.Extra)
}

func (b *Bone) UnmarshalJSON(data []byte) error {
	*b = Bone{}
	extra, err := decodeRecord(data, b.members())
	if err != nil {
		return err
	}
	b.Extra = extra
	return nil
}

// Clone returns a copy sharing no pointers or maps with b.
func (b Bone) Clone() Bone {
	b.CreatedAt = cloneTime(b.CreatedAt)
	b.UpdatedAt = cloneTime(b.UpdatedAt)
	b.Extra = cloneExtra(b.Extra)
	return b
}

// BoneInput is the payload accepted by create and update calls.
type BoneInput struct {
	Name        string `json:"name,omitempty"`
	SpecieID    ID     `json:"specieId,omitempty"`
	Region      string `json:"region,omitempty"`
	Description string `json:"description,omitempty"`
}
