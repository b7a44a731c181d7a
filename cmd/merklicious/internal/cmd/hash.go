package cmd

import (
	"fmt"

	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	var blockFile string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Prints the leaf hash of a data block.",
		Long: `Prints the leaf hash of a data block, given as JSON in the form found in the
"target" of a disclosure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var block merklicious.LeafDataBlock
			if err := readJSON(blockFile, &block); err != nil {
				return err
			}

			digest, err := block.Hash()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&blockFile, "block", "b", "", "data block JSON file")
	_ = cmd.MarkFlagRequired("block")
	return cmd
}
