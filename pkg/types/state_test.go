package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreStateCloneIsIndependent(t *testing.T) {
	orig := StoreState[Specie]{
		Current:    &Specie{ID: "1", Name: "Dog"},
		List:       []Specie{{ID: "1", Name: "Dog"}, {ID: "5", Name: "Cat"}},
		Pagination: &Pagination{Page: 1, TotalPages: 2, HasNext: true},
		Total:      2,
		Err:        errors.New("boom"),
	}

	c := orig.Clone()
	assert.Equal(t, orig, c)

	c.Current.Name = "Wolf"
	c.List[0].Name = "Wolf"
	c.Pagination.Page = 2
	assert.Equal(t, "Dog", orig.Current.Name)
	assert.Equal(t, "Dog", orig.List[0].Name)
	assert.Equal(t, 1, orig.Pagination.Page)
}

func TestStoreStateCloneKeepsNilList(t *testing.T) {
	assert.Nil(t, StoreState[Bone]{}.Clone().List)
}

func TestPersistedError(t *testing.T) {
	var err error = &PersistedError{Message: "Network Error"}
	assert.EqualError(t, err, "Network Error")
}
