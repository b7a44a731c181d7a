package cmd

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/spf13/cobra"
)

var (
	ErrNotDisclosed = errors.New("not every disclosure verified")
)

type disclosureResultJSON struct {
	Index  uint64 `json:"index"`
	Label  string `json:"label"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

func newVerifyCmd() *cobra.Command {
	var proofFiles []string
	var rootHex string
	var totalLeavesFlag uint64

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verifies disclosures against a committed root.",
		Long: `Verifies disclosures made with "merklicious prove".

Without --root and --total-leaves the disclosures are checked against the
tree of the first well formed one, which only shows they are consistent.
Pass the root and size you trust, for example from a signed claim, to check
the leaves were committed under it.

Exits with an error unless every disclosure verifies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			disclosures := make([]merklicious.LeafProof, 0, len(proofFiles))
			for _, file := range proofFiles {
				var disclosure merklicious.LeafProof
				if err := readJSON(file, &disclosure); err != nil {
					return err
				}
				disclosures = append(disclosures, disclosure)
			}

			root, totalLeaves := committedTree(disclosures)
			if rootHex != "" {
				var err error
				root, err = merklicious.ParseDigest(rootHex)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("total-leaves") {
				totalLeaves = totalLeavesFlag
			}

			results, err := verifyDisclosures(root, totalLeaves, disclosures)
			if err != nil {
				return err
			}

			out := make([]disclosureResultJSON, 0, len(results))
			verified := true
			for _, result := range results {
				r := disclosureResultJSON{
					Index:  result.Index,
					Label:  result.Label,
					Result: result.Type.String(),
				}
				if result.Err != nil {
					r.Error = result.Err.Error()
				}
				verified = verified && result.Type == merklicious.Disclosed
				out = append(out, r)
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !verified {
				return fmt.Errorf("%w: root %s", ErrNotDisclosed, root)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&proofFiles, "proof", "p", nil, "disclosure JSON file, may be repeated")
	cmd.Flags().StringVarP(&rootHex, "root", "r", "", "hex root the disclosures must be committed under")
	cmd.Flags().Uint64Var(&totalLeavesFlag, "total-leaves", 0, "number of leaves of the committed tree")
	_ = cmd.MarkFlagRequired("proof")
	return cmd
}

// committedTree gets the root and size of the tree of the first well formed
// disclosure. Both are zero if no disclosure is well formed.
func committedTree(disclosures []merklicious.LeafProof) (merklicious.Digest, uint64) {
	for _, disclosure := range disclosures {
		if disclosure.Validate() == nil {
			return disclosure.Root, disclosure.TotalLeaves
		}
	}
	return merklicious.Digest{}, 0
}

// verifyDisclosures verifies the disclosures against the committed tree. With
// no committed size, as when no disclosure is well formed, each disclosure is
// classified on its own.
func verifyDisclosures(root merklicious.Digest, totalLeaves uint64, disclosures []merklicious.LeafProof) ([]merklicious.DisclosureResult, error) {
	if totalLeaves != 0 {
		return merklicious.VerifyDisclosures(root, totalLeaves, disclosures)
	}

	results := make([]merklicious.DisclosureResult, 0, len(disclosures))
	for _, disclosure := range disclosures {
		results = append(results, merklicious.VerifyDisclosure(root, totalLeaves, disclosure))
	}
	return results, nil
}
