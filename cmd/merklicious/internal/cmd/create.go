package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/datatrails/go-datatrails-merklicious/merklicious/ledger"
	"github.com/spf13/cobra"
)

// treeSummary is the JSON view of a stored tree. The entropy is left out,
// anyone holding it can derive every salt of the tree.
type treeSummary struct {
	Tree        merklicious.RecordID       `json:"tree"`
	Root        merklicious.Digest         `json:"root"`
	TotalLeaves int                        `json:"total_leaves"`
	DataBlocks  merklicious.RecordID       `json:"data_blocks"`
	Leaves      []merklicious.Digest       `json:"leaves,omitempty"`
	Meta        map[string]canonical.Value `json:"meta,omitempty"`
}

func newCreateCmd(a *app) *cobra.Command {
	var input string
	var entropyHex string
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Commits the leaves of a JSON document into a new tree.",
		Long: `Commits the leaves of a JSON document into a new tree, and stores it.

The document lists the leaves in order:

{
  "leaves": [ { "label": "name", "value": "alice" }, ... ],
  "entropy": "<hex>"
}

The entropy is optional. Without it, and without --entropy, fresh entropy
is generated. Prints the tree id and root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}

			leaves, entropy, err := merklicious.ParseLeafInputs(data)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			if entropyHex != "" {
				entropy, err = hex.DecodeString(entropyHex)
				if err != nil {
					return fmt.Errorf("%w: entropy: %v", merklicious.ErrKey, err)
				}
			}

			options := []merklicious.CreateTreeOption{merklicious.WithEntropySize(a.conf.EntropySize)}
			if entropy != nil {
				options = append(options, merklicious.WithEntropy(entropy))
			}

			l, closeStore, err := a.openLedger()
			if err != nil {
				return err
			}
			defer closeStore()

			id, tree, err := l.CreateTree(cmd.Context(), ledger.CreateTreeInput{
				Leaves: leaves,
				Meta:   metaValues(meta),
			}, options...)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), treeSummary{
				Tree:        id,
				Root:        tree.Root,
				TotalLeaves: len(tree.Leaves),
				DataBlocks:  tree.DataBlocks,
				Meta:        tree.Meta,
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON leaves document")
	cmd.Flags().StringVar(&entropyHex, "entropy", "", "hex entropy, overrides the document entropy")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata stored with the tree, key=value")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func metaValues(meta map[string]string) map[string]canonical.Value {
	if len(meta) == 0 {
		return nil
	}
	values := make(map[string]canonical.Value, len(meta))
	for k, v := range meta {
		values[k] = canonical.String(v)
	}
	return values
}
