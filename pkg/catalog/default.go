package catalog

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed clevr.preds.ont
var clevrOntology string

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(strings.NewReader(clevrOntology))
	if err != nil {
		panic("catalog: embedded ontology: " + err.Error())
	}
	return c
})

// Default returns the built-in CLEVR ontology. It types both the
// per-attribute operations (filter_color, query_shape, ...) and their
// factored families (filter, query, same, equal).
func Default() *Catalog {
	return defaultCatalog()
}
