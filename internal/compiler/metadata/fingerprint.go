package metadata

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/cfgschema/schemac/internal/compiler/ast"
)

// Fingerprint returns the hex BLAKE3 digest of the canonical JSON rendering.
// Two schemas with the same fingerprint render identically.
func Fingerprint(schema *ast.Schema) (string, error) {
	data, err := Render(schema, FormatJSON)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
