package nginx

import "fmt"

// NodeKind discriminates the two node variants.
type NodeKind int

const (
	// DirectiveNode is a leaf statement terminated by ';'.
	DirectiveNode NodeKind = iota
	// BlockNode is a named '{ }' group holding children.
	BlockNode
)

// Node is one parsed statement: either a leaf directive or a block. Blocks
// keep their argument list (e.g. the location path or upstream name) and
// their children in source order.
type Node struct {
	Kind     NodeKind
	Name     string
	Args     []string
	Line     int
	Children []*Node
}

// Child returns the first child directive or block with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildBlocks returns all child blocks with the given name.
func (n *Node) ChildBlocks(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == BlockNode && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Tree is the root of a parsed configuration.
type Tree struct {
	Children []*Node
}

// BuildAST assembles the token stream into a nested directive/block tree.
// Parsing is best-effort: syntax problems are recorded as line-numbered
// error strings and never abort the build. The returned tree may be partial.
func BuildAST(tokens []Token) (*Tree, []string) {
	tree := &Tree{}
	var stack []*Node
	var errs []string

	appendNode := func(n *Node) {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
		} else {
			tree.Children = append(tree.Children, n)
		}
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch tok.Kind {
		case TokenComment, TokenSemicolon:
			// Comments are inert; a stray ';' is an empty statement.
			i++
		case TokenCloseBrace:
			if len(stack) == 0 {
				errs = append(errs, fmt.Sprintf("unexpected '}' at line %d", tok.Line))
			} else {
				stack = stack[:len(stack)-1]
			}
			i++
		case TokenOpenBrace:
			errs = append(errs, fmt.Sprintf("unexpected '{' at line %d", tok.Line))
			i++
		case TokenWord:
			name := tok.Value
			startLine := tok.Line
			i++
			var args []string
			for i < len(tokens) && (tokens[i].Kind == TokenWord || tokens[i].Kind == TokenComment) {
				if tokens[i].Kind == TokenWord {
					args = append(args, tokens[i].Value)
				}
				i++
			}
			if i >= len(tokens) {
				errs = append(errs, fmt.Sprintf("unexpected end of input after '%s' at line %d", name, startLine))
				appendNode(&Node{Kind: DirectiveNode, Name: name, Args: args, Line: startLine})
				break
			}
			switch tokens[i].Kind {
			case TokenSemicolon:
				appendNode(&Node{Kind: DirectiveNode, Name: name, Args: args, Line: startLine})
				i++
			case TokenOpenBrace:
				block := &Node{Kind: BlockNode, Name: name, Args: args, Line: startLine}
				appendNode(block)
				stack = append(stack, block)
				i++
			default:
				// A '}' where ';' or '{' was expected. Skip the rest of the
				// source line and resume.
				errs = append(errs, fmt.Sprintf("unexpected token after '%s' at line %d", name, tokens[i].Line))
				bad := tokens[i].Line
				for i < len(tokens) && tokens[i].Line == bad {
					i++
				}
			}
		}
	}

	if len(stack) > 0 {
		innermost := stack[len(stack)-1]
		errs = append(errs, fmt.Sprintf("unclosed block '%s' at line %d", innermost.Name, innermost.Line))
	}

	return tree, errs
}
