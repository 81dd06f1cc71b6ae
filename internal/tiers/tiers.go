package tiers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// LegacyFallbackID is the tier id chosen as fallback when none is configured.
const LegacyFallbackID = "T4"

// FactSource exposes derived facts by key. Unknown keys return nil.
type FactSource interface {
	Fact(key string) any
}

// FactMap adapts a plain map to FactSource.
type FactMap map[string]any

func (m FactMap) Fact(key string) any { return m[key] }

// Requirement binds one fact key to the rule it must satisfy.
type Requirement struct {
	Key  string
	Rule Rule
}

// Def is one configured tier.
type Def struct {
	ID          string
	Folder      string
	Description string
	// Requires is sorted by key. An empty list matches unconditionally.
	Requires []Requirement
	Flags    []string
}

// NewDef parses the raw requires table of a tier.
func NewDef(id, folder, description string, requires map[string]any, flags []string) (Def, error) {
	def := Def{
		ID:          id,
		Folder:      folder,
		Description: description,
		Flags:       append([]string(nil), flags...),
	}
	keys := make([]string, 0, len(requires))
	for key := range requires {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rule, err := ParseRule(requires[key])
		if err != nil {
			return Def{}, fmt.Errorf("tier %s requires.%s: %w", id, key, err)
		}
		def.Requires = append(def.Requires, Requirement{Key: key, Rule: rule})
	}
	return def, nil
}

// Matches reports whether every requirement holds for facts.
func (d Def) Matches(facts FactSource) bool {
	for _, req := range d.Requires {
		var actual any
		if facts != nil {
			actual = facts.Fact(req.Key)
		}
		if !req.Rule.Match(actual) {
			return false
		}
	}
	return true
}

// Table is the ordered tier list plus the resolved fallback.
type Table struct {
	defs     []Def
	fallback int
}

// NewTable validates defs and resolves the fallback tier. An empty fallbackID
// selects LegacyFallbackID when present, else the last tier.
func NewTable(defs []Def, fallbackID string) (Table, error) {
	if len(defs) == 0 {
		return Table{}, errors.New("at least one tier is required")
	}
	seen := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		key := strings.ToLower(strings.TrimSpace(def.ID))
		if key == "" {
			return Table{}, fmt.Errorf("tier %d: id is required", i+1)
		}
		if _, dup := seen[key]; dup {
			return Table{}, fmt.Errorf("tier %s: duplicate id", def.ID)
		}
		seen[key] = struct{}{}
	}

	table := Table{defs: append([]Def(nil), defs...), fallback: len(defs) - 1}
	fallbackID = strings.TrimSpace(fallbackID)
	if fallbackID == "" {
		if idx := table.index(LegacyFallbackID); idx >= 0 {
			table.fallback = idx
		}
		return table, nil
	}
	idx := table.index(fallbackID)
	if idx < 0 {
		return Table{}, fmt.Errorf("fallback tier %q does not name a configured tier", fallbackID)
	}
	table.fallback = idx
	return table, nil
}

// Defs returns the tiers in configured order.
func (t Table) Defs() []Def {
	return t.defs
}

// Fallback returns the tier used when no rule matches.
func (t Table) Fallback() Def {
	if len(t.defs) == 0 {
		return Def{}
	}
	return t.defs[t.fallback]
}

// Lookup finds a tier by id, case-insensitively.
func (t Table) Lookup(id string) (Def, bool) {
	idx := t.index(id)
	if idx < 0 {
		return Def{}, false
	}
	return t.defs[idx], true
}

// Select returns the first tier whose requirements all hold, else the fallback.
func (t Table) Select(facts FactSource) Def {
	for _, def := range t.defs {
		if def.Matches(facts) {
			return def
		}
	}
	return t.Fallback()
}

func (t Table) index(id string) int {
	for i, def := range t.defs {
		if strings.EqualFold(def.ID, id) {
			return i
		}
	}
	return -1
}
