package camfov

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed tag_schema.json
var tagSchema []byte

var tagSchemaLoader = gojsonschema.NewBytesLoader(tagSchema)

// ValidateTagJSON checks data against the tag file schema and reports every
// violation.
func ValidateTagJSON(data []byte) error {
	result, err := gojsonschema.Validate(tagSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("tag file: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("tag file: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadTagFile reads a JSON tag list (or an object keyed by tag id).
func LoadTagFile(path string) ([]Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tag file: %w", err)
	}
	if err := ValidateTagJSON(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NormalizeTags(json.RawMessage(data)), nil
}
