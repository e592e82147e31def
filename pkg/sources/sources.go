// Package sources declares where batch inputs come from and reads them.
package sources

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/embedefy-bridge/internal/registryfile"
)

// Source declares where batch inputs come from and which model embeds them.
type Source struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Type     string         `json:"type" yaml:"type"`
	Location string         `json:"location" yaml:"location"`
	Model    string         `json:"model" yaml:"model"`
	Config   map[string]any `json:"config" yaml:"config"`
}

// Registry holds the sources loaded from a config file, in file order. It is
// immutable after LoadRegistry.
type Registry struct {
	sources []Source
	idx     map[string]int
}

// LoadRegistry loads and validates the sources file at path.
func LoadRegistry(path string) (*Registry, error) {
	var file struct {
		Sources []Source `json:"sources" yaml:"sources"`
	}
	if err := registryfile.Load(path, "sources", &file); err != nil {
		return nil, err
	}
	if len(file.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	reg := &Registry{idx: make(map[string]int, len(file.Sources))}
	for i, raw := range file.Sources {
		s := raw.normalize()
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, dup := reg.idx[s.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.idx[s.ID] = len(reg.sources)
		reg.sources = append(reg.sources, s)
	}
	return reg, nil
}

func (s Source) normalize() Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.Location = strings.TrimSpace(s.Location)
	s.Model = strings.TrimSpace(s.Model)
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func (s Source) validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	for _, f := range []struct{ name, value string }{
		{"type", s.Type},
		{"location", s.Location},
		{"model", s.Model},
	} {
		if f.value == "" {
			return fmt.Errorf("%s is required for source %q", f.name, s.ID)
		}
	}
	return nil
}

// ByID returns the source with the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return Source{}, false
	}
	return r.sources[i], true
}

// All returns a copy of the configured sources.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	return append([]Source(nil), r.sources...)
}
