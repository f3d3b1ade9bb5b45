package sexpr

import "strings"

// Kind is the closed set of symbol classes a Node can belong to.
type Kind uint8

const (
	// Leaf is a constant or terminal symbol (e.g. "cube", "red").
	Leaf Kind = iota
	// Scene is the scene symbol every program bottoms out in.
	Scene
	// Exists is the existential quantifier, in either spelling.
	Exists
	// Filter is a filter_<attribute> operation, or the generic "filter".
	Filter
	// Query is a query_<attribute> operation, or the generic "query".
	Query
	// Equal is an equal_<attribute> operation, or the generic "equal".
	Equal
	// Same is a same_<attribute> operation, or the generic "same".
	Same
	// Attribute is an attribute argument injected by attribute factoring.
	Attribute
	// Call is any other operation (count, unique, relate_left, union, ...).
	Call
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Scene:
		return "scene"
	case Exists:
		return "exists"
	case Filter:
		return "filter"
	case Query:
		return "query"
	case Equal:
		return "equal"
	case Same:
		return "same"
	case Attribute:
		return "attribute"
	case Call:
		return "call"
	}
	return "unknown"
}

// ParseKind returns the Kind whose String form is name.
func ParseKind(name string) (Kind, bool) {
	for k := Leaf; k <= Call; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Symbol spellings with special meaning.
const (
	SceneSymbol        = "scene"
	ExistsSymbol       = "exists"
	ExistsLegacySymbol = "exist_"
)

// families maps an operation family prefix to its Kind.
var families = map[string]Kind{
	"filter": Filter,
	"query":  Query,
	"equal":  Equal,
	"same":   Same,
}

// Op is the classification of a Node's symbol.
// Family and Attribute are only set for Filter, Query, Equal and Same.
type Op struct {
	Kind      Kind
	Family    string
	Attribute string
}

// Classify decides the Op for a symbol. leaf reports whether the node
// carrying the symbol has no children.
func Classify(name string, leaf bool) Op {
	switch name {
	case SceneSymbol:
		return Op{Kind: Scene}
	case ExistsSymbol, ExistsLegacySymbol:
		return Op{Kind: Exists}
	}
	if leaf {
		return Op{Kind: Leaf}
	}
	if k, ok := families[name]; ok {
		return Op{Kind: k, Family: name}
	}
	if family, attr, ok := SplitFamily(name); ok {
		if k, known := families[family]; known {
			return Op{Kind: k, Family: family, Attribute: attr}
		}
	}
	return Op{Kind: Call}
}

// SplitFamily splits "<family>_<attribute>" into its two halves.
// It only succeeds for names with exactly one underscore and two non-empty parts.
func SplitFamily(name string) (family, attribute string, ok bool) {
	if strings.Count(name, "_") != 1 {
		return "", "", false
	}
	family, attribute, _ = strings.Cut(name, "_")
	if family == "" || attribute == "" {
		return "", "", false
	}
	return family, attribute, true
}
