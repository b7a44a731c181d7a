package cmd

import (
	"os"

	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/spf13/cobra"
)

func newProveCmd(a *app) *cobra.Command {
	var treeID string
	var label string
	var output string

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Discloses a leaf of a stored tree, with its inclusion proof.",
		Long: `Discloses the first leaf with the given label, with its inclusion proof.

The disclosure reveals the leaf value and salt, and nothing about the other
leaves. Check it with "merklicious verify".`,
		Args: cobra.NoArgs,
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

			proof, err := l.GetLeafProof(cmd.Context(), id, label)
			if err != nil {
				return err
			}

			if output == "" {
				return writeJSON(cmd.OutOrStdout(), proof)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			return writeJSON(f, proof)
		},
	}

	cmd.Flags().StringVarP(&treeID, "tree", "t", "", "tree id")
	cmd.Flags().StringVarP(&label, "label", "l", "", "label of the leaf to disclose")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the disclosure to this file instead of stdout")
	_ = cmd.MarkFlagRequired("tree")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}
