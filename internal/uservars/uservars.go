// Package uservars manages global user variables: named sets of variables,
// each with a base value and optional named members, that scripts and
// build commands can reference.
package uservars

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/codehost/internal/config"
)

// BaseMember is the implicit member holding a variable's main value.
const BaseMember = "base"

// ErrInvalidDefinition is returned for malformed -D values.
var ErrInvalidDefinition = errors.New("uservars: invalid definition")

// Definition is one parsed `[set.]name[.member]=value` assignment.
type Definition struct {
	Set    string
	Name   string
	Member string
	Value  string
}

// ParseDefinition parses a command-line assignment. One dotted part names
// the variable, two name the variable and member, three the set, variable
// and member.
func ParseDefinition(s string) (Definition, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q has no '='", ErrInvalidDefinition, s)
	}
	parts := strings.Split(strings.TrimSpace(key), ".")
	for _, p := range parts {
		if p == "" {
			return Definition{}, fmt.Errorf("%w: %q has an empty name part", ErrInvalidDefinition, s)
		}
	}

	d := Definition{Value: value, Member: BaseMember}
	switch len(parts) {
	case 1:
		d.Name = parts[0]
	case 2:
		d.Name, d.Member = parts[0], parts[1]
	case 3:
		d.Set, d.Name, d.Member = parts[0], parts[1], parts[2]
	default:
		return Definition{}, fmt.Errorf("%w: %q has too many parts", ErrInvalidDefinition, s)
	}
	d.Member = strings.ToLower(d.Member)
	return d, nil
}

type variable map[string]string // member -> value

// Manager holds the stored sets plus run-only overrides from the command
// line. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	active    string
	stored    map[string]map[string]variable
	overrides map[string]map[string]variable
}

// NewManager builds a manager from persisted sets.
func NewManager(sets []*config.UserVarSet, active string) *Manager {
	m := &Manager{
		stored:    make(map[string]map[string]variable),
		overrides: make(map[string]map[string]variable),
	}
	for _, set := range sets {
		vars := m.ensure(m.stored, set.Name)
		for _, v := range set.Vars {
			val := variable{BaseMember: v.Base}
			for member, value := range v.Members {
				val[strings.ToLower(member)] = value
			}
			vars[v.Name] = val
		}
	}
	if active == "" {
		active = config.DefaultUserVarSet
	}
	m.active = active
	m.ensure(m.stored, active)
	return m
}

func (m *Manager) ensure(in map[string]map[string]variable, set string) map[string]variable {
	vars, ok := in[set]
	if !ok {
		vars = make(map[string]variable)
		in[set] = vars
	}
	return vars
}

// ActiveSet returns the name of the active set.
func (m *Manager) ActiveSet() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// SetActive selects the active set, creating it when missing.
func (m *Manager) SetActive(set string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = set
	m.ensure(m.stored, set)
}

// ParseCommandLine applies -S and -D values. Definitions are overrides for
// this run only and are not persisted by Export.
func (m *Manager) ParseCommandLine(activeSet string, defs []string) error {
	if activeSet != "" {
		m.SetActive(activeSet)
	}
	var errs []error
	for _, raw := range defs {
		d, err := ParseDefinition(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.Override(d)
	}
	return errors.Join(errs...)
}

// Override records a run-only value.
func (m *Manager) Override(d Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := d.Set
	if set == "" {
		set = m.active
	}
	vars := m.ensure(m.overrides, set)
	v, ok := vars[d.Name]
	if !ok {
		v = make(variable)
		vars[d.Name] = v
	}
	v[d.Member] = d.Value
}

// Define stores a persistent value.
func (m *Manager) Define(d Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := d.Set
	if set == "" {
		set = m.active
	}
	vars := m.ensure(m.stored, set)
	v, ok := vars[d.Name]
	if !ok {
		v = make(variable)
		vars[d.Name] = v
	}
	v[d.Member] = d.Value
}

// Lookup returns a member of a variable in the active set. An empty member
// means the base value.
func (m *Manager) Lookup(name, member string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if member == "" {
		member = BaseMember
	}
	member = strings.ToLower(member)
	for _, src := range []map[string]map[string]variable{m.overrides, m.stored} {
		if v, ok := src[m.active][name]; ok {
			if val, ok := v[member]; ok {
				return val, true
			}
		}
	}
	return "", false
}

// Values returns the base value of every variable in the active set,
// overrides included.
func (m *Manager) Values() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	for _, src := range []map[string]map[string]variable{m.stored, m.overrides} {
		for name, v := range src[m.active] {
			if base, ok := v[BaseMember]; ok {
				out[name] = base
			}
		}
	}
	return out
}

// Export returns the persistent sets, sorted by name, for saving.
func (m *Manager) Export() []*config.UserVarSet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	setNames := sortedKeys(m.stored)
	out := make([]*config.UserVarSet, 0, len(setNames))
	for _, setName := range setNames {
		set := &config.UserVarSet{Name: setName}
		vars := m.stored[setName]
		for _, name := range sortedKeys(vars) {
			v := vars[name]
			uv := &config.UserVar{Name: name, Base: v[BaseMember]}
			for member, value := range v {
				if member == BaseMember {
					continue
				}
				if uv.Members == nil {
					uv.Members = make(map[string]string)
				}
				uv.Members[member] = value
			}
			set.Vars = append(set.Vars, uv)
		}
		out = append(out, set)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
