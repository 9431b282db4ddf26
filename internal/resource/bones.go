package resource

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Bones is the service for /bones. On top of the shared operations it can
// list the bones of one specie.
type Bones struct {
	*Service[types.Bone]
}

// NewBones returns the bones service.
func NewBones(client *httpx.Client, logger *slog.Logger) *Bones {
	return &Bones{Service: New[types.Bone](client, types.ResourceBones, "bone", logger)}
}

// GetAllBySpecie lists /bones/specie/{specieID}.
func (b *Bones) GetAllBySpecie(ctx context.Context, specieID types.ID, params url.Values) (*types.ListResponse[types.Bone], error) {
	return b.GetAllByRelation(ctx, types.RelationSpecie, specieID, params)
}
