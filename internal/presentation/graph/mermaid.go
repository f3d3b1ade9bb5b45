package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// Overlay marks nodes to emphasize on the diagram.
type Overlay struct {
	// Kinds highlights every node of these kinds.
	Kinds []sexpr.Kind
}

// GenerateMermaid produces a Mermaid flowchart of a program tree, root at
// the top. Nodes are shaped by kind:
//   - Scene: ((Circle))
//   - Filter: [[Subroutine]]
//   - Attribute: {{Hexagon}}
//   - Leaf value: [/Parallelogram/]
//   - Other operations: [Rectangle]
//
// Attribute arguments hang off a dotted edge. Edge labels give the
// argument position.
func GenerateMermaid(root *sexpr.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if root == nil {
		return sb.String()
	}

	var highlighted []string
	next := 0
	var visit func(n *sexpr.Node) string
	visit = func(n *sexpr.Node) string {
		id := fmt.Sprintf("n%d", next)
		next++

		opener, closer := shape(n.Op.Kind)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label(n), closer)
		if overlay != nil && slices.Contains(overlay.Kinds, n.Op.Kind) {
			highlighted = append(highlighted, id)
		}

		for i, child := range n.Children {
			childID := visit(child)
			arrow := fmt.Sprintf("-- \"%d\" -->", i)
			if child.Op.Kind == sexpr.Attribute {
				arrow = fmt.Sprintf("-. \"%d\" .->", i)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, childID)
		}
		return id
	}
	visit(root)

	if len(highlighted) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s highlight;\n", strings.Join(highlighted, ","))
	}
	return sb.String()
}

func shape(k sexpr.Kind) (string, string) {
	switch k {
	case sexpr.Scene:
		return "((", "))"
	case sexpr.Filter:
		return "[[", "]]"
	case sexpr.Attribute:
		return "{{", "}}"
	case sexpr.Leaf:
		return "[/", "/]"
	}
	return "[", "]"
}

// label renders name:type with quotes and angle brackets escaped for Mermaid.
func label(n *sexpr.Node) string {
	text := n.Name
	if n.Type != "" {
		text += ":" + n.Type
	}
	r := strings.NewReplacer("\"", "#quot;", "<", "#lt;", ">", "#gt;")
	return r.Replace(text)
}
