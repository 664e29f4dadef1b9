package syntax

import "github.com/coregx/lexgen/diag"

// Check applies the placement rules for anchors and trailing context to a
// parsed pattern: '^' only leads and '$' only ends a pattern, '$' cannot be
// combined with '/', a pattern has at most one '/', and one side of the '/'
// must have a fixed length. Errors carry no offset; they concern the whole
// pattern.
func Check(n *Node) []*Error {
	var errs []*Error
	report := func(code int) {
		errs = append(errs, newError(KindSemantic, code, 0, 0, ""))
	}

	tree := n
	if tree.Op == OpLeftAnchor {
		tree = tree.Sub
	}
	if tree.Op == OpRightAnchor {
		tree = tree.Sub
		if tree.Op == OpContext {
			report(diag.CodeContextWithAnchor)
		}
	}
	if tree.Op == OpContext {
		if tree.Left.ctxLen == 0 && tree.Right.ctxLen == 0 {
			report(diag.CodeVariableContext)
		}
		checkNested(tree.Left, report)
		checkNested(tree.Right, report)
		return errs
	}
	checkNested(tree, report)
	return errs
}

func checkNested(n *Node, report func(code int)) {
	Walk(n, func(n *Node) {
		switch n.Op {
		case OpLeftAnchor, OpRightAnchor:
			report(diag.CodeAnchorPosition)
		case OpContext:
			report(diag.CodeMultipleContext)
		}
	})
}

// IsLoopRisk reports whether the pattern can match the empty string, so a
// scanner returning its token could make no progress.
func IsLoopRisk(n *Node) bool {
	return n.Op != OpEOF && n.minLen == 0
}
