package broker

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// maxConsolidationHops bounds the parent walk. Real consolidation chains
// are one or two levels (site -> brand -> holding company); eight leaves
// generous room while still catching directory cycles introduced by bad
// extension data.
const maxConsolidationHops = 8

// ErrConsolidationCycle is returned by Validate when following parent links
// from some source does not terminate.
var ErrConsolidationCycle = errors.New("broker directory contains a consolidation cycle")

// Directory is the in-memory broker directory. It is immutable after
// construction and safe for concurrent use.
type Directory struct {
	entries map[string]model.BrokerEntry
}

// NewDirectory builds a directory from the built-in entries plus optional
// extensions (typically loaded from the YAML config file). Extension
// entries shadow built-ins with the same source id.
func NewDirectory(extensions ...model.BrokerEntry) (*Directory, error) {
	entries := make(map[string]model.BrokerEntry, len(builtinEntries)+len(extensions))
	for _, e := range builtinEntries {
		entries[e.Source] = e
	}
	for _, e := range extensions {
		if e.Source == "" {
			return nil, errors.New("broker directory extension entry is missing a source id")
		}
		entries[e.Source] = e
	}

	d := &Directory{entries: entries}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// validate checks every parent chain terminates within the hop bound.
func (d *Directory) validate() error {
	for source := range d.entries {
		if _, err := d.walkToRoot(source); err != nil {
			return fmt.Errorf("source %q: %w", source, err)
		}
	}
	return nil
}

// Info returns the directory entry for a source, if one exists.
func (d *Directory) Info(source string) (model.BrokerEntry, bool) {
	e, ok := d.entries[source]
	return e, ok
}

// ConsolidationParent returns the immediate parent brand for a source.
// The second return is false for standalone sources, parents themselves,
// and unknown sources.
func (d *Directory) ConsolidationParent(source string) (string, bool) {
	e, ok := d.entries[source]
	if !ok || e.Parent == "" {
		return "", false
	}
	return e.Parent, true
}

// UltimateParent follows parent links to the consolidation root. A source
// with no parent (or unknown to the directory) is its own root.
func (d *Directory) UltimateParent(source string) string {
	root, err := d.walkToRoot(source)
	if err != nil {
		// The chain was validated at construction; a cycle here means
		// the entry is unknown mid-chain. Treat the source as its own
		// root rather than failing a lookup.
		return source
	}
	return root
}

func (d *Directory) walkToRoot(source string) (string, error) {
	current := source
	for range maxConsolidationHops {
		e, ok := d.entries[current]
		if !ok || e.Parent == "" {
			return current, nil
		}
		current = e.Parent
	}
	return "", ErrConsolidationCycle
}

// IsParentBroker reports whether a source consolidates subsidiaries.
func (d *Directory) IsParentBroker(source string) bool {
	e, ok := d.entries[source]
	return ok && e.IsParent()
}

// Subsidiaries returns the source ids consolidated under a parent, or nil
// for non-parents.
func (d *Directory) Subsidiaries(source string) []string {
	e, ok := d.entries[source]
	if !ok || !e.IsParent() {
		return nil
	}
	out := make([]string, len(e.Subsidiaries))
	copy(out, e.Subsidiaries)
	return out
}

// Sources returns all known source ids in sorted order.
func (d *Directory) Sources() []string {
	out := make([]string, 0, len(d.entries))
	for source := range d.entries {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

// DisplayName returns the human-readable name for a source, falling back
// to the source id for unknown sources.
func (d *Directory) DisplayName(source string) string {
	if e, ok := d.entries[source]; ok && e.DisplayName != "" {
		return e.DisplayName
	}
	return source
}
