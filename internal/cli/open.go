package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dustnbones/internal/router"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Render the view for a client path",
		Long: `Open resolves a client path to its view and renders it.

Paths:
  /              species overview (accepts ?page=&limit=&search=)
  /bones/{id}    a specie and its bones`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := router.Default().Resolve(args[0])
			if err != nil {
				return userError("open", err)
			}
			a.logger.Debug("route resolved", "view", match.Name, "path", match.Path)

			return a.withSession(cmd.Context(), func(s *session) error {
				switch match.Name {
				case router.ViewSpecies:
					return a.openSpecies(cmd.Context(), s, match)
				case router.ViewBoneDetails:
					return a.openBoneDetails(cmd.Context(), s, match)
				}
				return userError("open", types.ErrNoRoute)
			})
		},
	}
}

func (a *app) openSpecies(ctx context.Context, s *session, m router.Match) error {
	if _, err := s.species.GetAll(ctx, m.Query); err != nil {
		return apiError("load species", err)
	}
	return a.renderer.SpeciesView(s.species.State())
}

// openBoneDetails loads the specie and its bones concurrently, the way the
// page does on mount.
func (a *app) openBoneDetails(ctx context.Context, s *session, m router.Match) error {
	id, err := parseID(m.Param("id"))
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var specieErr, bonesErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, specieErr = s.species.GetByID(ctx, id)
	}()
	go func() {
		defer wg.Done()
		_, bonesErr = s.bones.GetAllBySpecie(ctx, id, m.Query)
	}()
	wg.Wait()

	if err := errors.Join(specieErr, bonesErr); err != nil {
		// Prefer the classification of the first failure.
		first := specieErr
		if first == nil {
			first = bonesErr
		}
		return apiError("load bone details", first)
	}
	return a.renderer.BoneDetailsView(s.species.CurrentSpecie(), s.bones.State())
}
