package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func newSpeciesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "species",
		Aliases: []string{"specie"},
		Short:   "List and edit species",
	}
	cmd.AddCommand(
		newSpeciesListCmd(a),
		newSpeciesGetCmd(a),
		newSpeciesCreateCmd(a),
		newSpeciesUpdateCmd(a),
		newSpeciesDeleteCmd(a),
	)
	return cmd
}

func newSpeciesListCmd(a *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.values()
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				if _, err := s.species.GetAll(cmd.Context(), q); err != nil {
					return apiError("list species", err)
				}
				return a.renderer.Species(s.species.State())
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newSpeciesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one specie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				sp, err := s.species.GetByID(cmd.Context(), id)
				if err != nil {
					return apiError("get specie", err)
				}
				return a.renderer.Specie(sp)
			})
		},
	}
}

// specieFlags are the editable fields of a specie.
type specieFlags struct {
	input types.SpecieInput
}

func (f *specieFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input.Name, "name", "", "common name")
	cmd.Flags().StringVar(&f.input.ScientificName, "scientific-name", "", "scientific name")
	cmd.Flags().StringVar(&f.input.Description, "description", "", "free-form description")
}

func (f *specieFlags) empty() bool {
	return f.input == types.SpecieInput{}
}

func newSpeciesCreateCmd(a *app) *cobra.Command {
	var sf specieFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a specie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sf.input.Name == "" {
				return userError("invalid flag", fmt.Errorf("--name is required"))
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				sp, err := s.species.Create(cmd.Context(), sf.input)
				if err != nil {
					return apiError("create specie", err)
				}
				return a.renderer.Specie(sp)
			})
		},
	}
	sf.register(cmd)
	return cmd
}

func newSpeciesUpdateCmd(a *app) *cobra.Command {
	var sf specieFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a specie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if sf.empty() {
				return userError("invalid flag", fmt.Errorf("nothing to update"))
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				sp, err := s.species.Update(cmd.Context(), id, sf.input)
				if err != nil {
					return apiError("update specie", err)
				}
				return a.renderer.Specie(sp)
			})
		},
	}
	sf.register(cmd)
	return cmd
}

func newSpeciesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a specie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				env, err := s.species.Remove(cmd.Context(), id)
				if err != nil {
					return apiError("delete specie", err)
				}
				return a.renderer.Message(deletedMessage(envMessage(env), "specie", id))
			})
		},
	}
}

func parseID(s string) (types.ID, error) {
	id, err := types.ParseID(s)
	if err != nil {
		return "", userError("invalid id", err)
	}
	return id, nil
}

func envMessage[T any](env *types.Envelope[T]) string {
	if env == nil {
		return ""
	}
	return env.Message
}

func deletedMessage(msg, kind string, id types.ID) string {
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("%s %s deleted", kind, id)
}
