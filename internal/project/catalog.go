package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// CatalogFile is the on-disk form of a material and cutting style catalog.
type CatalogFile struct {
	// Replace drops the built-in materials instead of merging into them.
	Replace       bool                 `json:"replace"`
	Materials     []model.Material     `json:"materials"`
	CuttingStyles []model.CuttingStyle `json:"cutting_styles"`
}

// LoadCatalog reads a catalog from the given path.
// If path is empty or the file does not exist, it returns the built-in catalog.
// Materials from the file are merged into the built-in tables (replacing
// same-named entries) unless the file sets "replace". Cutting styles are
// taken from the file when it lists any.
func LoadCatalog(path string) (*model.Catalog, error) {
	if path == "" {
		return model.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return file.Build()
}

// Build validates the file's entries and combines them with the built-in tables.
func (f CatalogFile) Build() (*model.Catalog, error) {
	materials := f.Materials
	if !f.Replace {
		materials = append(model.DefaultMaterials(), f.Materials...)
	}
	styles := f.CuttingStyles
	if len(styles) == 0 {
		styles = model.DefaultCuttingStyles()
	}

	// Tables in the file may be unsorted; normalize before validation.
	normalized := make([]model.Material, 0, len(materials))
	for _, m := range materials {
		nm, err := model.NewMaterialFromPoints(m.Name, m.Chiploads, m.PlungeRate)
		if err != nil {
			return nil, fmt.Errorf("invalid material %q: %w", m.Name, err)
		}
		normalized = append(normalized, nm)
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("catalog has no materials: %w", model.ErrEmptyChiploadTable)
	}

	catalog, err := model.NewCatalog(normalized, styles)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}
