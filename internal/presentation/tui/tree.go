package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// Palette colours, one per kind group.
const (
	colorScene     = "#818cf8"
	colorFilter    = "#f472b6"
	colorOperation = "#c084fc"
	colorAttribute = "#fbbf24"
	colorLeaf      = "#34d399"
	colorType      = "#94a3b8"
)

// PrintTree writes an indented view of the tree, one node per line, with
// symbols coloured by kind. Use termenv.Ascii for plain output.
func PrintTree(w io.Writer, root *sexpr.Node, profile termenv.Profile) error {
	var err error
	root.Walk(func(n *sexpr.Node, depth int) bool {
		if err != nil {
			return false
		}
		name := profile.String(n.Name).Foreground(profile.Color(kindColor(n.Op.Kind)))
		if n.Op.Kind == sexpr.Filter || n.Op.Kind == sexpr.Scene {
			name = name.Bold()
		}
		line := strings.Repeat("  ", depth) + name.String()
		if n.Type != "" {
			line += profile.String(":" + n.Type).Foreground(profile.Color(colorType)).String()
		}
		_, err = fmt.Fprintln(w, line)
		return true
	})
	return err
}

func kindColor(k sexpr.Kind) string {
	switch k {
	case sexpr.Scene:
		return colorScene
	case sexpr.Filter:
		return colorFilter
	case sexpr.Attribute:
		return colorAttribute
	case sexpr.Leaf:
		return colorLeaf
	}
	return colorOperation
}

// NodeTable returns a markdown table listing every node in pre-order with
// its depth, kind and type.
func NodeTable(root *sexpr.Node) string {
	var sb strings.Builder
	sb.WriteString("| # | Depth | Symbol | Kind | Type |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	i := 0
	root.Walk(func(n *sexpr.Node, depth int) bool {
		typ := n.Type
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(&sb, "| %d | %d | `%s` | %s | `%s` |\n", i, depth, n.Name, n.Op.Kind, typ)
		i++
		return true
	})
	return sb.String()
}

// Summary returns a short markdown description of the tree's shape.
func Summary(title string, root *sexpr.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- **Nodes:** %d\n", root.Len())
	fmt.Fprintf(&sb, "- **Depth:** %d\n\n", root.Depth())
	fmt.Fprintf(&sb, "```\n%s\n```\n\n", sexpr.Serialize(root))
	sb.WriteString(NodeTable(root))
	return sb.String()
}
