package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

// WriteJSON stores the document as pretty-printed JSON at path, creating
// parent directories as needed.
func WriteJSON(path string, doc xema.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
