/*
Package pathmux implements a longest-prefix lookup tree for values
associated to path prefixes.

A value registered for the prefix /p matches every path of the form
/p/<segment...> with a non-empty remainder, and never /p itself. When
multiple registered prefixes match a path, the longest one wins. Exact
path matching is not handled here; callers that need exact routes keep
them in a separate table and consult it before the tree.
*/
package pathmux

import (
	"fmt"
	"strings"
)

type node struct {
	path string

	// The list of static children to check, indexed by their first byte.
	staticIndices []byte
	staticChild   []*node

	leafValue any
}

// Tree structure to store values associated to path prefixes.
type Tree node

func (n *node) insert(path string) *node {
	if len(path) == 0 {
		return n
	}

	c := path[0]

	// Do we have an existing node that starts with the same byte?
	for i, index := range n.staticIndices {
		if c == index {
			// Yes. Split it based on the common prefix of the existing
			// node and the new one.
			child, prefixSplit := n.splitCommonPrefix(i, path)
			return child.insert(path[prefixSplit:])
		}
	}

	// No existing node starting with this byte, so create it.
	child := &node{path: path}
	n.staticIndices = append(n.staticIndices, c)
	n.staticChild = append(n.staticChild, child)
	return child
}

func (n *node) splitCommonPrefix(existingNodeIndex int, path string) (*node, int) {
	childNode := n.staticChild[existingNodeIndex]

	if strings.HasPrefix(path, childNode.path) {
		// No split needs to be done. Rather, the new path shares the entire
		// prefix with the existing node, so the new node is just a child of
		// the existing one. Or the new path is the same as the existing path,
		// which means that we just move on to the next token. Either way,
		// this return accomplishes that.
		return childNode, len(childNode.path)
	}

	// Find the length of the common prefix of the child node and the new path.
	i := commonPrefixLen(childNode.path, path)

	commonPrefix := path[0:i]
	childNode.path = childNode.path[i:]

	// Create a new intermediary node in the place of the existing node, with
	// the existing node as a child.
	newNode := &node{
		path: commonPrefix,
		// Index is the first byte of the non-common part of the path.
		staticIndices: []byte{childNode.path[0]},
		staticChild:   []*node{childNode},
	}
	n.staticChild[existingNodeIndex] = newNode

	return newNode, i
}

func commonPrefixLen(x, y string) int {
	n := 0
	for n < len(x) && n < len(y) && x[n] == y[n] {
		n++
	}
	return n
}

// Add associates a value with a path prefix. The prefix must begin with
// a slash and must not end with one. Registering the same prefix twice
// is an error.
func (t *Tree) Add(prefix string, value any) error {
	if value == nil {
		return fmt.Errorf("nil value for prefix %q", prefix)
	}

	if prefix == "" || prefix[0] != '/' {
		return fmt.Errorf("prefix %q must start with a slash", prefix)
	}

	if prefix != "/" && prefix[len(prefix)-1] == '/' {
		return fmt.Errorf("prefix %q must not end with a slash", prefix)
	}

	n := (*node)(t).insert(prefix)
	if n.leafValue != nil {
		return fmt.Errorf("prefix %q already registered", prefix)
	}

	n.leafValue = value
	return nil
}

// Lookup finds the value associated with the longest registered prefix p
// such that the path continues after p with a slash and at least one more
// byte. The path equal to a registered prefix, or the prefix followed by
// nothing but a slash, does not match.
func (t *Tree) Lookup(path string) (value any, prefix string, found bool) {
	n := (*node)(t)
	consumed := 0

	for {
		if n.leafValue != nil && consumed+1 < len(path) && path[consumed] == '/' {
			value, prefix, found = n.leafValue, path[:consumed], true
		}

		if consumed == len(path) {
			return
		}

		c := path[consumed]
		var next *node
		for i, index := range n.staticIndices {
			if c == index {
				next = n.staticChild[i]
				break
			}
		}

		if next == nil || !strings.HasPrefix(path[consumed:], next.path) {
			return
		}

		consumed += len(next.path)
		n = next
	}
}
