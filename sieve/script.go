package sieve

// Script is the root production: the ordered top-level commands of a
// SIEVE script.
type Script struct {
	Node

	commands []*Command
	analyzed bool
}

// NewScript returns an empty script root.
func NewScript() *Script {
	s := &Script{}
	s.init("script")
	return s
}

// Append adds c to the script's top-level commands. A nil c is ignored.
func (s *Script) Append(c *Command) {
	if c == nil {
		return
	}
	s.commands = append(s.commands, c)
	c.SetParent(&s.Node)
}

// Commands returns the script's top-level commands in source order.
func (s *Script) Commands() []*Command {
	return s.commands
}

// Analyze runs the semantic pass over the whole tree: every command and
// test is checked against its schema, diagnostics land on the offending
// nodes, and extension requirements propagate to the collector.
//
// Analysis mutates parsed flags and error strings, so running it twice
// would re-flag arguments the first run already consumed; a second call
// is therefore a no-op.
func (s *Script) Analyze() {
	if s.analyzed {
		return
	}
	s.analyzed = true

	previous := ""
	for _, c := range s.commands {
		c.Parse(previous)
		previous = c.Identifier()
	}
}

// Analyzed reports whether Analyze has run.
func (s *Script) Analyzed() bool {
	return s.analyzed
}
