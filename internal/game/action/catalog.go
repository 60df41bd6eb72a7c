package action

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a referenced action is not in the catalog.
var ErrNotFound = errors.New("action not found")

// Catalog holds the immutable action templates by name.
type Catalog struct {
	actions map[string]*Action
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{actions: make(map[string]*Action)}
}

// Add validates a and registers it.
//
// Postcondition: on success Get(a.Name) returns an equal template.
func (c *Catalog) Add(a *Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, dup := c.actions[a.Name]; dup {
		return fmt.Errorf("action %q defined twice", a.Name)
	}
	c.actions[a.Name] = a
	return nil
}

// Get returns the template named name. The template must not be mutated;
// use Instance for a per-actor copy.
func (c *Catalog) Get(name string) (*Action, error) {
	a, ok := c.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return a, nil
}

// Instance returns a fresh per-actor copy of the named template.
func (c *Catalog) Instance(name string) (*Action, error) {
	a, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// Names returns every action name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.actions))
	for n := range c.actions {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.actions)
}

type catalogFile struct {
	Actions []*Action `yaml:"actions"`
}

// LoadCatalogFromBytes parses one YAML document holding an actions list.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	c := NewCatalog()
	if err := c.addYAML(data); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCatalog reads every *.yaml file in dir into one catalog.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading action dir %q: %w", dir, err)
	}
	c := NewCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := c.addYAML(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return c, nil
}

func (c *Catalog) addYAML(data []byte) error {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing actions: %w", err)
	}
	for _, a := range f.Actions {
		if err := c.Add(a); err != nil {
			return err
		}
	}
	return nil
}
