package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// DefaultInventoryPath returns the default file path for the tool rack.
// This is located at ~/.cnc-calculator/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// LoadInventory reads the tool rack from the specified JSON file.
// If the file does not exist, it returns the default inventory.
// Tools that fail validation are reported in the error and left out.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultInventory(), nil
		}
		return model.Inventory{}, fmt.Errorf("failed to read inventory: %w", err)
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, fmt.Errorf("failed to parse inventory %s: %w", path, err)
	}
	return validTools(inv)
}

// ImportInventory reads tools from a user-specified JSON file and merges
// them into the existing inventory. Duplicate IDs are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	imported, err := LoadInventory(path)
	if err != nil {
		return existing, err
	}

	merged := model.Inventory{Tools: append([]model.ToolProfile(nil), existing.Tools...)}
	toolIDs := make(map[string]bool, len(existing.Tools))
	for _, t := range existing.Tools {
		toolIDs[t.ID] = true
	}
	for _, t := range imported.Tools {
		if !toolIDs[t.ID] {
			merged.Tools = append(merged.Tools, t)
			toolIDs[t.ID] = true
		}
	}
	return merged, nil
}

func validTools(inv model.Inventory) (model.Inventory, error) {
	kept := inv.Tools[:0]
	var firstErr error
	for _, t := range inv.Tools {
		if err := t.Validate(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid tool %q: %w", t.Name, err)
			}
			continue
		}
		kept = append(kept, t)
	}
	inv.Tools = kept
	return inv, firstErr
}
