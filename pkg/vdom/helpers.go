package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a node from unescaped HTML. The HTML is parsed when the tree
// is mounted; never pass unsanitized user input.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper.
func Fragment(children ...any) *VNode {
	el := createElement("", children)
	return &VNode{Kind: KindFragment, Children: el.Children}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is like If but only calls fn when condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes, dropping nil results.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}
