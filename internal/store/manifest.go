package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const manifestFile = "polyrc.yaml"

// Manifest marks an initialized store and carries its durable settings.
type Manifest struct {
	Version   string    `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
	Remote    Remote    `yaml:"remote,omitempty"`
}

// Remote is the optional sync target.
type Remote struct {
	URL string `yaml:"url,omitempty"`
}

// NewManifest returns a fresh manifest stamped now.
func NewManifest() Manifest {
	return Manifest{Version: "1", CreatedAt: time.Now().UTC()}
}

// LoadManifest reads the manifest from a store root.
func LoadManifest(root string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(filepath.Join(root, manifestFile))
	if err != nil {
		return m, fmt.Errorf("reading store manifest: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("parsing store manifest: %w", err)
	}
	return m, nil
}

// Save writes the manifest into a store root.
func (m Manifest) Save(root string) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding store manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, manifestFile), raw, 0o644); err != nil {
		return fmt.Errorf("writing store manifest: %w", err)
	}
	return nil
}
