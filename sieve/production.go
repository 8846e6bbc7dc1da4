package sieve

// Node is the common base of every production in the parsed SIEVE tree:
// arguments, argument lists, commands, tests, blocks and the script
// itself. It remembers where in the source the production came from, so
// errors can be reported against the exact offending span, and carries the
// extension bookkeeping shared by all node kinds.
type Node struct {
	name        string
	parent      *Node
	parser      *Parser
	start       int
	end         int
	errmsg      string
	ihaveFailed bool
	added       map[string]struct{}
	addedOrder  []string
}

func (n *Node) init(name string) {
	n.name = name
}

// Name returns the production's name as defined in RFC 5228 section 8,
// e.g. "command", "test" or "argument".
func (n *Node) Name() string {
	return n.name
}

// SetParent records that this production is a child of parent. The parent
// chain is used to scope extension visibility and ihave suppression.
func (n *Node) SetParent(parent *Node) {
	n.parent = parent
}

// Parent returns the enclosing production, or nil for the script root.
func (n *Node) Parent() *Node {
	return n.parent
}

// SetParser records that this production was built by p, which also
// collects any diagnostics recorded on it. If the node already has an
// error the parser is told at once.
func (n *Node) SetParser(p *Parser) {
	n.parser = p
	if n.parser != nil && n.errmsg != "" {
		n.parser.rememberBadProduction(n)
	}
}

// SetStart records the byte offset where this production starts. The
// first byte of the source is 0.
func (n *Node) SetStart(p int) {
	n.start = p
}

// Start returns what SetStart set, or 0.
func (n *Node) Start() int {
	return n.start
}

// SetEnd records the byte offset just past the end of this production.
func (n *Node) SetEnd(p int) {
	n.end = p
}

// End returns what SetEnd set, or 0.
func (n *Node) End() int {
	return n.end
}

// SetError records that this production suffers from the error e.
//
// An empty e clears any previous error; clearing is always permitted and
// is how a validator retracts a tentative diagnostic. A non-empty e
// succeeds if the node has no error yet, or if no ancestor (this node
// included) has had an ihave test fail. Inside a failed ihave branch the
// script may legitimately use syntax we do not understand, so existing
// diagnostics are frozen at their first value there; a node that had no
// diagnostic may still gain its first one.
func (n *Node) SetError(e string) {
	if e == "" {
		n.errmsg = e
	} else if n.errmsg == "" {
		n.errmsg = e
	} else {
		p := n
		for p != nil && !p.ihaveFailed {
			p = p.parent
		}
		if p == nil {
			n.errmsg = e
		}
	}

	if n.errmsg != "" && n.parser != nil {
		n.parser.rememberBadProduction(n)
	}
}

// ErrorMessage returns what SetError recorded, or an empty string if the
// production is fine.
func (n *Node) ErrorMessage() string {
	return n.errmsg
}

// Require records that the script depends on extension. If some ancestor
// (or this node) already declares the extension visible, the call is a
// no-op; otherwise the parser's needed-extension set is told.
func (n *Node) Require(extension string) {
	p := n
	for p != nil {
		if _, ok := p.added[extension]; ok {
			return
		}
		p = p.parent
	}
	if n.parser != nil {
		n.parser.rememberNeededExtension(extension)
	}
}

// SetIhaveFailed records that an ihave test in this production will fail
// when executed, so the production or its children might contain unknown
// extensions. Below it, an error already recorded on a node is not
// replaced; a node without an error can still receive its first one
// (see SetError).
func (n *Node) SetIhaveFailed() {
	n.ihaveFailed = true
}

// IhaveFailed returns true if existing errors below this node are frozen.
func (n *Node) IhaveFailed() bool {
	return n.ihaveFailed
}

// AddedExtensions returns the extensions declared visible at this node by
// require or ihave, in declaration order. It does not include extensions
// declared on ancestors.
func (n *Node) AddedExtensions() []string {
	return n.addedOrder
}

// AddExtensions records that the listed extensions are available in this
// production and its children. Extensions already visible on an ancestor
// are not duplicated locally.
func (n *Node) AddExtensions(list []string) {
	if len(list) == 0 {
		return
	}

	already := make(map[string]struct{})
	p := n
	for p != nil {
		for ext := range p.added {
			already[ext] = struct{}{}
		}
		p = p.parent
	}

	for _, ext := range list {
		if _, ok := already[ext]; ok {
			continue
		}
		if n.added == nil {
			n.added = make(map[string]struct{})
		}
		if _, ok := n.added[ext]; !ok {
			n.added[ext] = struct{}{}
			n.addedOrder = append(n.addedOrder, ext)
		}
	}
}

// ExtensionVisible reports whether extension has been declared at this
// node or any ancestor.
func (n *Node) ExtensionVisible(extension string) bool {
	p := n
	for p != nil {
		if _, ok := p.added[extension]; ok {
			return true
		}
		p = p.parent
	}
	return false
}

// supported reports whether the implementation behind the owning parser
// accepts extension. Nodes built without a parser fall back to the full
// built-in set.
func (n *Node) supported(extension string) bool {
	if n.parser != nil {
		return n.parser.supportsExtension(extension)
	}
	_, ok := builtinExtensions[extension]
	return ok
}
