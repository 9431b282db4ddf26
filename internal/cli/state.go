package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dustnbones/internal/store"
	"github.com/mesh-intelligence/dustnbones/internal/views"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or clear locally stored state",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Summarize the stored state of each store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.showState(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Reset both stores and delete their snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.clearState(cmd.Context())
			},
		},
	)
	return cmd
}

func (a *app) showState(ctx context.Context) error {
	p, err := a.openPersister(ctx)
	if err != nil {
		return systemError("open state storage", err)
	}
	defer p.Close()

	species, err := summarize(ctx, p, types.StorageKeySpecies, store.SpeciesFields, func(s types.Specie) string { return s.Name })
	if err != nil {
		return err
	}
	bones, err := summarize(ctx, p, types.StorageKeyBones, store.BonesFields, func(b types.Bone) string { return b.Name })
	if err != nil {
		return err
	}
	return a.renderer.Snapshots([]views.SnapshotSummary{species, bones})
}

func summarize[T any](ctx context.Context, p store.Persister, key string, fields store.Fields, name func(T) string) (views.SnapshotSummary, error) {
	sum := views.SnapshotSummary{Key: key}
	data, err := p.Load(ctx, key)
	if errors.Is(err, types.ErrNoSnapshot) {
		return sum, nil
	}
	if err != nil {
		return sum, systemError("load state", err)
	}
	st, err := store.DecodeSnapshot[T](data, fields)
	if err != nil {
		return sum, systemError(fmt.Sprintf("decode %s", key), err)
	}
	sum.Stored = true
	sum.Items = len(st.List)
	sum.Total = st.Total
	if st.Current != nil {
		sum.Current = name(*st.Current)
	}
	if st.Err != nil {
		sum.Error = st.Err.Error()
	}
	return sum, nil
}

// clearState resets both stores. The session is not closed through
// withSession since that would save the empty state straight back.
func (a *app) clearState(ctx context.Context) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.persister.Close()

	if err := s.species.Reset(ctx); err != nil {
		return systemError("clear state", err)
	}
	if err := s.bones.Reset(ctx); err != nil {
		return systemError("clear state", err)
	}
	return a.renderer.Message("state cleared")
}
