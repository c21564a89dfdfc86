package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML shape of a user-supplied catalog.
type catalogFile struct {
	Version   int        `yaml:"version"`
	Entries   []Entry    `yaml:"entries"`
	Conflicts [][]string `yaml:"conflicts,omitempty"`
	Options   []Option   `yaml:"options,omitempty"`
}

// Load reads a YAML catalog file from disk. Entries replace the built-in
// catalog entirely; when the file declares no conflict groups, the built-in
// groups are kept.
func Load(path string) (*Catalog, []Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if len(cf.Entries) == 0 {
		return nil, nil, fmt.Errorf("catalog %s declares no entries", path)
	}

	c := &Catalog{Entries: cf.Entries}
	if len(cf.Conflicts) > 0 {
		c.Conflicts = make([]ConflictGroup, len(cf.Conflicts))
		for i, g := range cf.Conflicts {
			c.Conflicts[i] = ConflictGroup(g)
		}
	} else {
		c.Conflicts = DefaultConflicts()
	}

	return c, cf.Options, nil
}
