package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func newBonesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bones",
		Aliases: []string{"bone"},
		Short:   "List and edit bones",
	}
	cmd.AddCommand(
		newBonesListCmd(a),
		newBonesGetCmd(a),
		newBonesCreateCmd(a),
		newBonesUpdateCmd(a),
		newBonesDeleteCmd(a),
	)
	return cmd
}

func newBonesListCmd(a *app) *cobra.Command {
	var lf listFlags
	var specie string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bones, optionally of one specie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.values()
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				if specie != "" {
					_, err = s.bones.GetAllBySpecie(cmd.Context(), types.ID(specie), q)
				} else {
					_, err = s.bones.GetAll(cmd.Context(), q)
				}
				if err != nil {
					return apiError("list bones", err)
				}
				return a.renderer.Bones(s.bones.State())
			})
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&specie, "specie", "", "only bones of this specie ID")
	return cmd
}

func newBonesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one bone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				b, err := s.bones.GetByID(cmd.Context(), id)
				if err != nil {
					return apiError("get bone", err)
				}
				return a.renderer.Bone(b)
			})
		},
	}
}

// boneFlags are the editable fields of a bone.
type boneFlags struct {
	input  types.BoneInput
	specie string
}

func (f *boneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input.Name, "name", "", "bone name")
	cmd.Flags().StringVar(&f.specie, "specie", "", "owning specie ID")
	cmd.Flags().StringVar(&f.input.Region, "region", "", "anatomical region")
	cmd.Flags().StringVar(&f.input.Description, "description", "", "free-form description")
}

func (f *boneFlags) payload() types.BoneInput {
	in := f.input
	in.SpecieID = types.ID(f.specie)
	return in
}

func newBonesCreateCmd(a *app) *cobra.Command {
	var bf boneFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bf.input.Name == "" || bf.specie == "" {
				return userError("invalid flag", fmt.Errorf("--name and --specie are required"))
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				b, err := s.bones.Create(cmd.Context(), bf.payload())
				if err != nil {
					return apiError("create bone", err)
				}
				return a.renderer.Bone(b)
			})
		},
	}
	bf.register(cmd)
	return cmd
}

func newBonesUpdateCmd(a *app) *cobra.Command {
	var bf boneFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a bone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			payload := bf.payload()
			if payload == (types.BoneInput{}) {
				return userError("invalid flag", fmt.Errorf("nothing to update"))
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				b, err := s.bones.Update(cmd.Context(), id, payload)
				if err != nil {
					return apiError("update bone", err)
				}
				return a.renderer.Bone(b)
			})
		},
	}
	bf.register(cmd)
	return cmd
}

func newBonesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				env, err := s.bones.Remove(cmd.Context(), id)
				if err != nil {
					return apiError("delete bone", err)
				}
				return a.renderer.Message(deletedMessage(envMessage(env), "bone", id))
			})
		},
	}
}
