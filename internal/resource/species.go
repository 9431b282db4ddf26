package resource

import (
	"log/slog"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Species is the service for /species.
type Species = Service[types.Specie]

// NewSpecies returns the species service.
func NewSpecies(client *httpx.Client, logger *slog.Logger) *Species {
	return New[types.Specie](client, types.ResourceSpecies, "specie", logger)
}
