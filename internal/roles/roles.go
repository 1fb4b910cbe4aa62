// Package roles loads the worker role profiles. The default profiles are
// embedded; a YAML file may override individual roles.
package roles

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

//go:embed roles.yaml
var defaultProfiles []byte

// ErrUnknownRole is returned for identifiers outside the closed role set.
var ErrUnknownRole = errors.New("unknown role")

// file is the on-disk layout of a profiles document.
type file struct {
	Roles []models.Profile `yaml:"roles"`
}

// Set is a total mapping from worker role to profile.
type Set struct {
	profiles map[models.Role]models.Profile
}

// Default returns the embedded profiles.
func Default() (*Set, error) {
	set, err := parse(defaultProfiles)
	if err != nil {
		return nil, fmt.Errorf("embedded roles: %w", err)
	}
	if err := set.validate(); err != nil {
		return nil, fmt.Errorf("embedded roles: %w", err)
	}
	return set, nil
}

// Load returns the embedded profiles with the roles from path replacing
// their defaults. An empty path returns the defaults.
func Load(path string) (*Set, error) {
	set, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	override, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for id, p := range override.profiles {
		set.profiles[id] = p
	}
	if err := set.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	set := &Set{profiles: make(map[models.Role]models.Profile, len(f.Roles))}
	for _, p := range f.Roles {
		p.ID = models.ParseRole(string(p.ID))
		if !p.ID.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, p.ID)
		}
		if _, dup := set.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate role %q", p.ID)
		}
		p.Instructions = strings.TrimSpace(p.Instructions)
		set.profiles[p.ID] = p
	}
	return set, nil
}

func (s *Set) validate() error {
	for _, r := range models.Roles {
		p, ok := s.profiles[r]
		if !ok {
			return fmt.Errorf("missing profile for role %q", r)
		}
		if p.Instructions == "" {
			return fmt.Errorf("role %q has no instructions", r)
		}
		for _, c := range p.Capabilities {
			if !c.Valid() {
				return fmt.Errorf("role %q: unknown capability %q", r, c)
			}
		}
	}
	return nil
}

// Get returns the profile of a worker role.
func (s *Set) Get(r models.Role) (models.Profile, error) {
	p, ok := s.profiles[r]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}
	return p, nil
}

// All returns every profile in roster order.
func (s *Set) All() []models.Profile {
	out := make([]models.Profile, 0, len(models.Roles))
	for _, r := range models.Roles {
		out = append(out, s.profiles[r])
	}
	return out
}

// Roster returns every profile except the given role, in roster order.
func (s *Set) Roster(except models.Role) []models.Profile {
	out := make([]models.Profile, 0, len(models.Roles)-1)
	for _, p := range s.All() {
		if p.ID != except {
			out = append(out, p)
		}
	}
	return out
}
