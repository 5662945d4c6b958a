package export

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed summary.schema.json
var summarySchema []byte

// ErrInvalidSummary is returned when a summary document does not match the summary schema.
var ErrInvalidSummary = errors.New("invalid summary")

// ValidateSummary checks a decoded summary document against the summary
// schema. doc is the generic form produced by decoding into an any.
func ValidateSummary(doc any) error {
	schemaLoader := gojsonschema.NewBytesLoader(summarySchema)
	inputLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, inputLoader)
	if err != nil {
		return fmt.Errorf("validate summary: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidSummary, strings.Join(problems, "; "))
}
