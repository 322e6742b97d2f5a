package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is the static, ordered table of section definitions.
// Built once at startup; all lookups after that are read-only.
type Catalog struct {
	byID  map[SectionID]*SectionDefinition
	order []SectionID
}

// New builds a catalog from definitions, wiring Next pointers from the
// declared order and rejecting duplicates or gaps.
func New(defs []SectionDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog requires at least one section")
	}

	sorted := make([]SectionDefinition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	c := &Catalog{byID: make(map[SectionID]*SectionDefinition, len(sorted))}
	for i := range sorted {
		def := sorted[i]
		if def.ID == "" {
			return nil, fmt.Errorf("section at order %d has empty id", def.Order)
		}
		if _, exists := c.byID[def.ID]; exists {
			return nil, fmt.Errorf("duplicate section id: %s", def.ID)
		}
		if i < len(sorted)-1 {
			def.Next = sorted[i+1].ID
		} else {
			def.Next = ""
		}
		c.byID[def.ID] = &def
		c.order = append(c.order, def.ID)
	}
	return c, nil
}

// First returns the opening section of the interview.
func (c *Catalog) First() SectionID {
	return c.order[0]
}

// Len returns the number of sections.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Order returns section IDs in catalog order.
func (c *Catalog) Order() []SectionID {
	out := make([]SectionID, len(c.order))
	copy(out, c.order)
	return out
}

// Get returns the definition for an ID known to be valid.
func (c *Catalog) Get(id SectionID) (*SectionDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Resolve validates external input (e.g. a "modify:icp" target) against
// the catalog. IDs are matched case-insensitively because the model
// sometimes emits them capitalized.
func (c *Catalog) Resolve(raw string) (SectionID, error) {
	id := SectionID(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := c.byID[id]; !ok {
		return "", fmt.Errorf("unknown section id: %q", raw)
	}
	return id, nil
}

// NextUnfinished finds the first section, in catalog order, whose status
// is not done. Sections cannot be completed out of order, so scanning
// from the front never skips ahead of an incomplete one. Returns false
// when every section is done.
func (c *Catalog) NextUnfinished(statuses map[SectionID]SectionStatus) (SectionID, bool) {
	for _, id := range c.order {
		if statuses[id] != StatusDone {
			return id, true
		}
	}
	return "", false
}
