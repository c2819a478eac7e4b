package index

import "github.com/temirov/dirindex/internal/types"

// CountNodes returns the number of nodes in the document.
func CountNodes(document types.IndexDocument) int {
	directoryCount, fileCount := CountByKind(document)
	return directoryCount + fileCount
}

// CountByKind returns the number of directory and file nodes in the document.
func CountByKind(document types.IndexDocument) (int, int) {
	var directoryCount, fileCount int
	pending := append([]*types.Node(nil), document.Roots...)
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if node == nil {
			continue
		}
		if node.Kind.IsDirectory() {
			directoryCount++
		} else {
			fileCount++
		}
		pending = append(pending, node.Children...)
	}
	return directoryCount, fileCount
}

// Walk visits every node in pre-order with its depth (0 for root-level nodes).
// Returning false from visit skips the node's descendants.
func Walk(nodes []*types.Node, visit func(node *types.Node, depth int) bool) {
	type walkFrame struct {
		node  *types.Node
		depth int
	}
	pending := make([]walkFrame, 0, len(nodes))
	for nodeIndex := len(nodes) - 1; nodeIndex >= 0; nodeIndex-- {
		pending = append(pending, walkFrame{node: nodes[nodeIndex]})
	}
	for len(pending) > 0 {
		frame := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if frame.node == nil || !visit(frame.node, frame.depth) {
			continue
		}
		for childIndex := len(frame.node.Children) - 1; childIndex >= 0; childIndex-- {
			pending = append(pending, walkFrame{node: frame.node.Children[childIndex], depth: frame.depth + 1})
		}
	}
}
