package sexpr

import "strings"

// Serialize renders a tree in parenthesized prefix notation. Typed nodes
// render as "name:type".
func Serialize(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	if n.IsLeaf() {
		writeSymbol(sb, n)
		return
	}
	sb.WriteByte('(')
	writeSymbol(sb, n)
	for _, c := range n.Children {
		sb.WriteByte(' ')
		writeNode(sb, c)
	}
	sb.WriteByte(')')
}

func writeSymbol(sb *strings.Builder, n *Node) {
	sb.WriteString(n.Name)
	if n.Type != "" {
		sb.WriteByte(':')
		sb.WriteString(n.Type)
	}
}
