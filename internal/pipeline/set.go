package pipeline

import (
	"errors"
	"fmt"
)

// ErrLastConfiguration is returned when removing the only configuration in
// a set; a set always holds at least one.
var ErrLastConfiguration = errors.New("cannot remove the last remaining configuration")

// Set is a named collection of configurations with exactly one marked
// active. Iteration order is insertion order, which also fixes the runAll
// execution order.
type Set struct {
	order   []string
	configs map[string]*Configuration
	active  string
}

// NewSet creates a set seeded with one configuration, which becomes active.
func NewSet(first *Configuration) (*Set, error) {
	if first == nil {
		return nil, errors.New("a set requires an initial configuration")
	}

	return &Set{
		order:   []string{first.name},
		configs: map[string]*Configuration{first.name: first},
		active:  first.name,
	}, nil
}

// Add inserts a configuration and marks it active.
func (s *Set) Add(c *Configuration) error {
	if _, exists := s.configs[c.name]; exists {
		return fmt.Errorf("configuration %q already exists", c.name)
	}

	s.configs[c.name] = c
	s.order = append(s.order, c.name)
	s.active = c.name

	return nil
}

// Remove deletes the named configuration. The last remaining configuration
// cannot be removed. Removing the active configuration atomically moves the
// active selection to the first remaining one.
func (s *Set) Remove(name string) error {
	if _, ok := s.configs[name]; !ok {
		return fmt.Errorf("configuration %q not found", name)
	}

	if len(s.order) == 1 {
		return ErrLastConfiguration
	}

	delete(s.configs, name)

	keep := s.order[:0]

	for _, n := range s.order {
		if n != name {
			keep = append(keep, n)
		}
	}

	s.order = keep

	if s.active == name {
		s.active = s.order[0]
	}

	return nil
}

// Rename changes a configuration's name, keeping its position and the
// active selection consistent.
func (s *Set) Rename(oldName, newName string) error {
	c, ok := s.configs[oldName]
	if !ok {
		return fmt.Errorf("configuration %q not found", oldName)
	}

	if newName == "" {
		return errors.New("configuration name must not be empty")
	}

	if _, exists := s.configs[newName]; exists && newName != oldName {
		return fmt.Errorf("configuration %q already exists", newName)
	}

	delete(s.configs, oldName)
	c.name = newName
	s.configs[newName] = c

	for i, n := range s.order {
		if n == oldName {
			s.order[i] = newName
		}
	}

	if s.active == oldName {
		s.active = newName
	}

	return nil
}

// SetActive marks the named configuration active.
func (s *Set) SetActive(name string) error {
	if _, ok := s.configs[name]; !ok {
		return fmt.Errorf("configuration %q not found", name)
	}

	s.active = name

	return nil
}

// Active returns the active configuration.
func (s *Set) Active() *Configuration {
	return s.configs[s.active]
}

// ActiveName returns the active configuration's name.
func (s *Set) ActiveName() string { return s.active }

// Get returns the named configuration.
func (s *Set) Get(name string) (*Configuration, bool) {
	c, ok := s.configs[name]
	return c, ok
}

// Names returns the configuration names in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// All returns the configurations in insertion order.
func (s *Set) All() []*Configuration {
	out := make([]*Configuration, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.configs[n])
	}

	return out
}

// Len returns the number of configurations.
func (s *Set) Len() int { return len(s.order) }
