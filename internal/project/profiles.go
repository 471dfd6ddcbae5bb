package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// DefaultProfilesPath returns the default file path for custom post-processor profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.GCodeProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.GCodeProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.Name == "" {
			return nil, errors.New("custom profile has no name")
		}
	}
	return profiles, nil
}

// ResolveProfile looks name up among the custom profiles first, then the
// built-in ones. Unknown names resolve to the Generic profile.
func ResolveProfile(name string, custom []model.GCodeProfile) model.GCodeProfile {
	for _, p := range custom {
		if p.Name == name {
			return p
		}
	}
	return model.GetProfile(name)
}
