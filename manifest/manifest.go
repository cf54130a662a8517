// Package manifest handles schema.toml class declarations.
//
// An engine declares its record layouts in a TOML manifest; loading one
// produces a populated types.Registry for records and the wire codec to
// resolve against.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	"github.com/chazu/rill/types"
)

var log = commonlog.GetLogger("rill.manifest")

// Manifest represents a schema.toml file.
type Manifest struct {
	Schema  Schema  `toml:"schema"`
	Classes []Class `toml:"class"`

	// Path is the file the manifest was loaded from (set at load time).
	Path string `toml:"-"`
}

// Schema contains manifest metadata.
type Schema struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Class declares one record layout.
type Class struct {
	Name      string   `toml:"name"`
	Namespace string   `toml:"namespace"`
	Extends   string   `toml:"extends"`
	Attrs     []string `toml:"attrs"`
}

// QualifiedName returns the namespace-prefixed class name.
func (c Class) QualifiedName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// Load parses a schema.toml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return m, nil
}

// Parse parses manifest bytes and validates the declarations.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(m.Classes))
	for _, c := range m.Classes {
		if c.Name == "" {
			return nil, fmt.Errorf("class declaration without a name")
		}
		q := c.QualifiedName()
		if seen[q] {
			return nil, fmt.Errorf("class %s declared twice", q)
		}
		seen[q] = true
	}
	return &m, nil
}

// Build resolves the declarations into a fresh registry. A class's
// Extends target must be declared in the same manifest; declaration
// order does not matter, but inheritance cycles are errors.
func (m *Manifest) Build() (*types.Registry, error) {
	byName := make(map[string]Class, len(m.Classes))
	for _, c := range m.Classes {
		byName[c.QualifiedName()] = c
	}

	reg := types.NewRegistry()
	building := make(map[string]bool)

	var build func(q string) (*types.ClassType, error)
	build = func(q string) (*types.ClassType, error) {
		if ct, ok := reg.Lookup(q); ok {
			return ct, nil
		}
		if building[q] {
			return nil, fmt.Errorf("inheritance cycle through %s", q)
		}
		c, ok := byName[q]
		if !ok {
			return nil, fmt.Errorf("unknown class %s", q)
		}
		building[q] = true
		defer delete(building, q)

		var super *types.ClassType
		if c.Extends != "" {
			var err error
			if super, err = build(c.Extends); err != nil {
				return nil, err
			}
		}
		ct := types.NewClassType(c.Name, c.Namespace, super, c.Attrs)
		if err := reg.Register(ct); err != nil {
			return nil, err
		}
		return ct, nil
	}

	for _, c := range m.Classes {
		if _, err := build(c.QualifiedName()); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}

	log.Infof("built %d classes from %s", reg.Len(), m.Schema.Name)
	return reg, nil
}

// LoadRegistry is the common path: load a schema.toml and build its
// registry in one step.
func LoadRegistry(path string) (*types.Registry, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return m.Build()
}
