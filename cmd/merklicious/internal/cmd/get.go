package cmd

import (
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	var treeID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Prints a stored tree, its root and leaf hashes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := merklicious.ParseRecordID(treeID)
			if err != nil {
				return err
			}

			l, closeStore, err := a.openLedger()
			if err != nil {
				return err
			}
			defer closeStore()

			tree, err := l.GetTree(cmd.Context(), id)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), treeSummary{
				Tree:        id,
				Root:        tree.Root,
				TotalLeaves: len(tree.Leaves),
				DataBlocks:  tree.DataBlocks,
				Leaves:      tree.Leaves,
				Meta:        tree.Meta,
			})
		},
	}

	cmd.Flags().StringVarP(&treeID, "tree", "t", "", "tree id")
	_ = cmd.MarkFlagRequired("tree")
	return cmd
}
