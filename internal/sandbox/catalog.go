package sandbox

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

var (
	errNotFound      = errors.New("not found")
	errNameRequired  = errors.New("name is required")
	errUnknownSpecie = errors.New("specieId does not reference an existing specie")
)

// Catalog is the in-memory data set behind the sandbox API.
type Catalog struct {
	mu      sync.RWMutex
	nextID  int64
	species map[types.ID]types.Specie
	bones   map[types.ID]types.Bone
	now     func() time.Time
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		species: make(map[types.ID]types.Specie),
		bones:   make(map[types.ID]types.Bone),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Seeded returns a catalog holding a few species with their bones.
func Seeded() *Catalog {
	c := NewCatalog()
	seed := []struct {
		specie types.SpecieInput
		bones  []types.BoneInput
	}{
		{
			types.SpecieInput{Name: "Dog", ScientificName: "Canis lupus familiaris"},
			[]types.BoneInput{
				{Name: "Femur", Region: "hindlimb"},
				{Name: "Humerus", Region: "forelimb"},
				{Name: "Mandible", Region: "skull"},
			},
		},
		{
			types.SpecieInput{Name: "Cat", ScientificName: "Felis catus"},
			[]types.BoneInput{
				{Name: "Clavicle", Region: "thorax"},
				{Name: "Tibia", Region: "hindlimb"},
			},
		},
		{
			types.SpecieInput{Name: "Horse", ScientificName: "Equus caballus"},
			[]types.BoneInput{
				{Name: "Cannon bone", Region: "forelimb"},
			},
		},
	}
	for _, s := range seed {
		sp, _ := c.CreateSpecie(s.specie)
		for _, b := range s.bones {
			b.SpecieID = sp.ID
			_, _ = c.CreateBone(b)
		}
	}
	return c
}

func (c *Catalog) newID() types.ID {
	c.nextID++
	return types.IDFromInt(c.nextID)
}

func (c *Catalog) stamp() *time.Time {
	t := c.now()
	return &t
}

// ListSpecies returns species whose name matches search, ordered by ID.
func (c *Catalog) ListSpecies(search string) []types.Specie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Specie, 0, len(c.species))
	for _, s := range c.species {
		if matches(search, s.Name, s.ScientificName) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b types.Specie) int { return compareIDs(a.ID, b.ID) })
	return out
}

func (c *Catalog) GetSpecie(id types.ID) (types.Specie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.species[id]
	if !ok {
		return types.Specie{}, errNotFound
	}
	return s, nil
}

func (c *Catalog) CreateSpecie(in types.SpecieInput) (types.Specie, error) {
	if strings.TrimSpace(in.Name) == "" {
		return types.Specie{}, errNameRequired
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.stamp()
	s := types.Specie{
		ID:             c.newID(),
		Name:           in.Name,
		ScientificName: in.ScientificName,
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	c.species[s.ID] = s
	return s, nil
}

// UpdateSpecie applies the non-empty fields of in.
func (c *Catalog) UpdateSpecie(id types.ID, in types.SpecieInput) (types.Specie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.species[id]
	if !ok {
		return types.Specie{}, errNotFound
	}
	if in.Name != "" {
		s.Name = in.Name
	}
	if in.ScientificName != "" {
		s.ScientificName = in.ScientificName
	}
	if in.Description != "" {
		s.Description = in.Description
	}
	s.UpdatedAt = c.stamp()
	c.species[id] = s
	return s, nil
}

// DeleteSpecie removes a specie and its bones.
func (c *Catalog) DeleteSpecie(id types.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.species[id]; !ok {
		return errNotFound
	}
	delete(c.species, id)
	for bid, b := range c.bones {
		if b.SpecieID == id {
			delete(c.bones, bid)
		}
	}
	return nil
}

// ListBones returns bones matching search, optionally limited to one specie.
func (c *Catalog) ListBones(specieID types.ID, search string) []types.Bone {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Bone, 0, len(c.bones))
	for _, b := range c.bones {
		if !specieID.IsZero() && b.SpecieID != specieID {
			continue
		}
		if matches(search, b.Name, b.Region) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b types.Bone) int { return compareIDs(a.ID, b.ID) })
	return out
}

func (c *Catalog) GetBone(id types.ID) (types.Bone, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bones[id]
	if !ok {
		return types.Bone{}, errNotFound
	}
	return b, nil
}

func (c *Catalog) CreateBone(in types.BoneInput) (types.Bone, error) {
	if strings.TrimSpace(in.Name) == "" {
		return types.Bone{}, errNameRequired
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.species[in.SpecieID]; !ok {
		return types.Bone{}, errUnknownSpecie
	}
	now := c.stamp()
	b := types.Bone{
		ID:          c.newID(),
		Name:        in.Name,
		SpecieID:    in.SpecieID,
		Region:      in.Region,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.bones[b.ID] = b
	return b, nil
}

// UpdateBone applies the non-empty fields of in.
func (c *Catalog) UpdateBone(id types.ID, in types.BoneInput) (types.Bone, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bones[id]
	if !ok {
		return types.Bone{}, errNotFound
	}
	if !in.SpecieID.IsZero() {
		if _, ok := c.species[in.SpecieID]; !ok {
			return types.Bone{}, errUnknownSpecie
		}
		b.SpecieID = in.SpecieID
	}
	if in.Name != "" {
		b.Name = in.Name
	}
	if in.Region != "" {
		b.Region = in.Region
	}
	if in.Description != "" {
		b.Description = in.Description
	}
	b.UpdatedAt = c.stamp()
	c.bones[id] = b
	return b, nil
}

func (c *Catalog) DeleteBone(id types.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bones[id]; !ok {
		return errNotFound
	}
	delete(c.bones, id)
	return nil
}

// matches reports whether any field contains search, ignoring case. A Caser
// keeps state between calls, so each search gets its own.
func matches(search string, fields ...string) bool {
	fold := cases.Fold()
	search = fold.String(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(fold.String(f), search) {
			return true
		}
	}
	return false
}

// compareIDs orders numeric IDs numerically and everything else lexically.
func compareIDs(a, b types.ID) int {
	ai, aerr := strconv.ParseInt(string(a), 10, 64)
	bi, berr := strconv.ParseInt(string(b), 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(string(a), string(b))
}
