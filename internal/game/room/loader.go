package room

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Level is one entry of the level catalog: the levels the server hosts and
// their flag start positions.
type Level struct {
	ID    uint32      `yaml:"id"`
	Name  string      `yaml:"name"`
	Flags [][]float32 `yaml:"flags"`
}

// yamlLevelFile is the top-level YAML structure for the level catalog.
type yamlLevelFile struct {
	Levels []Level `yaml:"levels"`
}

func (l Level) validate() error {
	if l.ID == NoLevel {
		return fmt.Errorf("level id %d is reserved", NoLevel)
	}
	if l.Name == "" {
		return fmt.Errorf("level %d: name must not be empty", l.ID)
	}
	for i, f := range l.Flags {
		if len(f) != 3 {
			return fmt.Errorf("level %d: flag %d must have 3 coordinates, got %d", l.ID, i, len(f))
		}
	}
	return nil
}

// FlagStarts returns the flag start positions as fixed-size vectors.
func (l Level) FlagStarts() [][3]float32 {
	starts := make([][3]float32, 0, len(l.Flags))
	for _, f := range l.Flags {
		starts = append(starts, [3]float32{float32(f[0]), float32(f[1]), float32(f[2])})
	}
	return starts
}

func errDuplicateLevel(id uint32) error {
	return fmt.Errorf("duplicate level id: %d", id)
}

// LoadLevelsFromFile reads and validates the level catalog YAML file.
func LoadLevelsFromFile(path string) ([]Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading levels file %s: %w", path, err)
	}
	return LoadLevelsFromBytes(data)
}

// LoadLevelsFromBytes parses and validates the level catalog from YAML
// bytes.
func LoadLevelsFromBytes(data []byte) ([]Level, error) {
	var file yamlLevelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing levels YAML: %w", err)
	}
	if len(file.Levels) == 0 {
		return nil, fmt.Errorf("level catalog is empty")
	}
	for _, lvl := range file.Levels {
		if err := lvl.validate(); err != nil {
			return nil, fmt.Errorf("validating level catalog: %w", err)
		}
	}
	return file.Levels, nil
}
