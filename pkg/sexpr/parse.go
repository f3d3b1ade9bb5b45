package sexpr

import (
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Parse builds a tree from a single expression line.
// Symbols are taken verbatim; use ParseTyped to read annotated output.
func Parse(line string) (*Node, error) {
	return parse(line, false)
}

// ParseTyped is like Parse but splits "name:type" symbols into the node's
// name and type, so serialized annotated trees can be read back.
func ParseTyped(line string) (*Node, error) {
	return parse(line, true)
}

func parse(line string, typed bool) (*Node, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Offset: 0, Reason: "empty input"}
	}

	stack := arraystack.New()
	var (
		cur    *Node // node under construction
		root   *Node // completed top-level node
		depth  int   // open parentheses
		opened bool  // last token was "("
	)

	for _, tok := range tokens {
		if root != nil {
			return nil, &ParseError{Offset: tok.Offset, Reason: "unexpected " + quoteToken(tok) + " after complete expression"}
		}

		switch tok.Kind {
		case Open:
			if opened {
				return nil, &ParseError{Offset: tok.Offset, Reason: "expected operation symbol after '('"}
			}
			if cur != nil {
				stack.Push(cur)
				cur = nil
			}
			depth++
			opened = true

		case Close:
			if depth == 0 {
				return nil, &ParseError{Offset: tok.Offset, Reason: "unbalanced ')'"}
			}
			if cur == nil {
				return nil, &ParseError{Offset: tok.Offset, Reason: "empty expression '()'"}
			}
			depth--
			opened = false

			done := cur
			parent, ok := stack.Pop()
			if !ok {
				root = done
				cur = nil
				continue
			}
			cur = parent.(*Node)
			cur.Children = append(cur.Children, done)
			cur.Op = Classify(cur.Name, false)

		case Symbol:
			n := newSymbolNode(tok.Text, typed)
			if cur == nil {
				if !opened {
					return nil, &ParseError{Offset: tok.Offset, Reason: "symbol " + quoteToken(tok) + " outside parentheses"}
				}
				cur = n
			} else {
				cur.Children = append(cur.Children, n)
				cur.Op = Classify(cur.Name, false)
			}
			opened = false
		}
	}

	if depth != 0 || !stack.Empty() {
		return nil, &ParseError{Offset: len(line), Reason: "unbalanced parentheses: missing ')'"}
	}
	if root == nil {
		return nil, &ParseError{Offset: len(line), Reason: "no expression completed"}
	}
	return root, nil
}

func newSymbolNode(text string, typed bool) *Node {
	if !typed {
		return NewLeaf(text)
	}
	name, typ, ok := strings.Cut(text, ":")
	n := NewLeaf(name)
	if ok {
		n.Type = typ
		if typ == AbstractAttributeType {
			n.Op = Op{Kind: Attribute}
		}
	}
	return n
}

func quoteToken(tok Token) string {
	return "'" + tok.Text + "'"
}
