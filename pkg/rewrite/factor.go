package rewrite

import (
	"sort"
	"strings"

	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// DefaultFamilies are the operation families rewritten by attribute factoring.
var DefaultFamilies = []string{"filter", "equal", "query", "same"}

// DefaultBareFamilies are renamed without an injected attribute argument.
// equal_<attribute> already compares two values of that attribute.
var DefaultBareFamilies = []string{"equal"}

// Factorer rewrites "<family>_<attribute>" operations into "<family>" with
// the attribute as an explicit first argument.
type Factorer struct {
	families map[string]bool
	bare     map[string]bool
}

// NewFactorer creates a Factorer. Nil slices select the defaults.
func NewFactorer(families, bare []string) *Factorer {
	if families == nil {
		families = DefaultFamilies
	}
	if bare == nil {
		bare = DefaultBareFamilies
	}
	f := &Factorer{
		families: make(map[string]bool, len(families)),
		bare:     make(map[string]bool, len(bare)),
	}
	for _, fam := range families {
		f.families[fam] = true
	}
	for _, fam := range bare {
		f.bare[fam] = true
	}
	return f
}

// Families returns the configured families, sorted.
func (f *Factorer) Families() []string {
	return sortedKeys(f.families)
}

// String describes the configuration, e.g. "families=equal,filter;bare=equal".
func (f *Factorer) String() string {
	return "families=" + strings.Join(sortedKeys(f.families), ",") + ";bare=" + strings.Join(sortedKeys(f.bare), ",")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Factor rewrites the tree in place. Names that are not exactly
// "<family>_<attribute>" for a configured family are left alone.
func (f *Factorer) Factor(root *sexpr.Node) error {
	var err error
	root.Walk(func(n *sexpr.Node, _ int) bool {
		if err != nil {
			return false
		}
		if n.IsLeaf() {
			return true
		}
		family, attr, ok := sexpr.SplitFamily(n.Name)
		if !ok || !f.families[family] {
			return true
		}
		n.Rename(family)
		if f.bare[family] {
			return true
		}
		if err = n.InsertChild(0, sexpr.NewAttribute(attr)); err != nil {
			return false
		}
		return true
	})
	return err
}
