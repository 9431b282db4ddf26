package types

import "encoding/json"

// Entity is a backend record that can be addressed by ID.
type Entity interface {
	EntityID() ID
}

// Pagination is the paging metadata the backend attaches to list bodies. It
// is passed through: numbers sent as strings still fill the typed fields, and
// every member is written back as received via Extra.
type Pagination struct {
	Page       int  `json:"page,omitempty"`
	Limit      int  `json:"limit,omitempty"`
	TotalPages int  `json:"totalPages,omitempty"`
	HasNext    bool `json:"hasNext,omitempty"`
	HasPrev    bool `json:"hasPrev,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (p *Pagination) members() []member {
	return []member{
		{key: "page", dst: &p.Page, omitEmpty: true},
		{key: "limit", dst: &p.Limit, omitEmpty: true},
		{key: "totalPages", dst: &p.TotalPages, omitEmpty: true},
		{key: "hasNext", dst: &p.HasNext, omitEmpty: true},
		{key: "hasPrev", dst: &p.HasPrev, omitEmpty: true},
	}
}

func (p Pagination) MarshalJSON() ([]byte, error) {
	return encodeRecord(p.members(), p.Extra)
}

func (p *Pagination) UnmarshalJSON(data []byte) error {
	*p = Pagination{}
	extra, err := decodeRecord(data, p.members())
	if err != nil {
		return err
	}
	p.Extra = extra
	return nil
}

// Clone returns a copy sharing no maps with p.
func (p Pagination) Clone() Pagination {
	p.Extra = cloneExtra(p.Extra)
	return p
}

// Envelope is the body of single-entity endpoints. Data is nil when the
// backend omits it (delete responses commonly do).
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// RawList is the list body exactly as the backend sends it. Count is a
// pointer so that a missing count can be told apart from zero.
type RawList[T any] struct {
	Success    bool        `json:"success"`
	Data       []T         `json:"data"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ListResponse is the normalized shape of every collection query.
type ListResponse[T any] struct {
	Success    bool        `json:"success"`
	Items      []T         `json:"items"`
	Total      int         `json:"total"`
	Pagination *Pagination `json:"pagination"`
}
