package merklicious

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
)

/**
 * JSON ingestion of the leaves of a new tree.
 *
 * The document is:
 *
 * {
 *   "leaves": [ { "label": "name", "value": <any json> }, ... ],
 *   "entropy": "<hex>"    (optional)
 * }
 *
 * Object key order inside values is preserved, it is part of the commitment.
 */

type leafInputJSON struct {
	Label *string         `json:"label"`
	Value canonical.Value `json:"value"`
}

type leafInputsJSON struct {
	Leaves  []leafInputJSON `json:"leaves"`
	Entropy string          `json:"entropy,omitempty"`
}

// ParseLeafInputs parses a JSON leaves document.
//
// Returns the leaf inputs in document order, and the entropy if the document
// supplies one.
func ParseLeafInputs(data []byte) ([]LeafInput, []byte, error) {
	var doc leafInputsJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("ParseLeafInputs failed: %w", err)
	}

	if len(doc.Leaves) == 0 {
		return nil, nil, ErrEmptyTree
	}

	leaves := make([]LeafInput, 0, len(doc.Leaves))
	for i, leaf := range doc.Leaves {
		if leaf.Label == nil {
			return nil, nil, fmt.Errorf("%w: leaf %d", ErrLabelRequired, i)
		}
		leaves = append(leaves, LeafInput{Label: *leaf.Label, Value: leaf.Value})
	}

	var entropy []byte
	if doc.Entropy != "" {
		var err error
		entropy, err = hex.DecodeString(doc.Entropy)
		if err != nil {
			return nil, nil, fmt.Errorf("ParseLeafInputs failed: entropy: %w", err)
		}
	}

	return leaves, entropy, nil
}
