// Package docgen renders plain-text documents from a template file with
// {name}-style placeholders. Rendering runs after client creation and is
// never allowed to gate the create itself.
package docgen

import (
	"fmt"
	"os"
	"strings"
)

// DefaultSalesTemplate is written next to the data when no template file
// exists yet.
const DefaultSalesTemplate = `=== Sales Contract ===
Client: {name}
Email: {email}
Phone: {phone}
Address: {address}

Terms:
1. Payment within 30 days.
2. Delivery within 5 business days.

Signature: _______________
`

// Renderer substitutes placeholders in one template file.
type Renderer struct {
	templatePath string
}

// NewRenderer creates a renderer for the template at path, writing
// [DefaultSalesTemplate] there if the file does not exist.
func NewRenderer(path string) (*Renderer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(DefaultSalesTemplate), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write default template: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat template %s: %w", path, err)
	}
	return &Renderer{templatePath: path}, nil
}

// Render reads the template and replaces every {key} with the mapped
// value. Unmapped placeholders are left as-is.
func (r *Renderer) Render(placeholders map[string]string) (string, error) {
	data, err := os.ReadFile(r.templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", r.templatePath, err)
	}
	pairs := make([]string, 0, len(placeholders)*2)
	for key, value := range placeholders {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(string(data)), nil
}

// Save writes a rendered document to outputPath.
func (r *Renderer) Save(content, outputPath string) error {
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to save document %s: %w", outputPath, err)
	}
	return nil
}
