package store

import (
	"context"
	"net/url"

	"github.com/mesh-intelligence/dustnbones/internal/resource"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// SpeciesStore holds species state under the specieStorage key.
type SpeciesStore struct {
	*Store[types.Specie]
}

// NewSpeciesStore wraps a species service.
func NewSpeciesStore(svc *resource.Species, opts ...Option) *SpeciesStore {
	return &SpeciesStore{New[types.Specie](types.StorageKeySpecies, SpeciesFields, svc, opts...)}
}

// CurrentSpecie returns the last fetched specie.
func (s *SpeciesStore) CurrentSpecie() *types.Specie { return s.Current() }

// SpeciesList returns the last fetched species list.
func (s *SpeciesStore) SpeciesList() []types.Specie { return s.List() }

// BonesStore holds bone state under the boneStorage key.
type BonesStore struct {
	*Store[types.Bone]
}

// NewBonesStore wraps a bones service.
func NewBonesStore(svc *resource.Bones, opts ...Option) *BonesStore {
	return &BonesStore{New[types.Bone](types.StorageKeyBones, BonesFields, svc.Service, opts...)}
}

// CurrentBone returns the last fetched bone.
func (s *BonesStore) CurrentBone() *types.Bone { return s.Current() }

// BonesList returns the last fetched bones list.
func (s *BonesStore) BonesList() []types.Bone { return s.List() }

// GetAllBySpecie lists the bones of one specie and replaces the list.
func (s *BonesStore) GetAllBySpecie(ctx context.Context, specieID types.ID, params url.Values) ([]types.Bone, error) {
	return s.GetAllByRelation(ctx, types.RelationSpecie, specieID, params)
}
