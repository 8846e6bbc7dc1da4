// Package sieve parses and validates SIEVE mail filtering scripts.
//
// SIEVE (RFC 5228) is a language for filtering email messages at delivery
// time. This package implements the static half of a SIEVE engine: a
// first-pass grammar parser that builds a production tree from script
// source, and a second-pass semantic analyzer that checks the tree against
// the per-command and per-test argument schemas, the extension declarations
// ("require" and "ihave"), and the various RFC-level constraints.
//
// # Two passes
//
// The first pass is purely syntactic. It produces Commands, Tests,
// Arguments and Blocks with source spans, and records only tokenization
// and grammar errors:
//
//	p := sieve.NewParser(nil)
//	script := p.Parse(source)
//
// The second pass walks the tree and validates it:
//
//	script.Analyze()
//	for _, node := range p.BadProductions() {
//	    fmt.Printf("%d-%d: %s\n", node.Start(), node.End(), node.ErrorMessage())
//	}
//
// Analysis never aborts. Every diagnostic is attached to the exact node
// that caused it, so a single pass over a broken script yields all of its
// errors at once. The parser doubles as the diagnostic collector: bad
// productions are remembered in source order, and extensions that the
// script uses without declaring are remembered in the needed-extension
// set.
//
// # Supported extensions
//
//   - body (RFC 5173)
//   - copy (RFC 3894)
//   - date (RFC 5260)
//   - envelope (RFC 5228)
//   - ereject (RFC 5429)
//   - fileinto (RFC 5228)
//   - ihave (RFC 5463)
//   - imap4flags (RFC 5232)
//   - reject (RFC 5429)
//   - relational (RFC 5231)
//   - subaddress (RFC 5233)
//   - vacation (RFC 5230)
//   - comparator-<name> for each registered collation (RFC 4790)
//
// # Error suppression under ihave
//
// An "ihave" test naming an extension this implementation does not support
// marks its branch: inside that branch, nodes keep whatever error they
// already had, and no error replaces another. A node that has no error
// yet can still receive one, so an unknown command inside the branch is
// reported, and so are arguments that no schema consumed. Outside the
// branch, errors are recorded as usual.
package sieve
