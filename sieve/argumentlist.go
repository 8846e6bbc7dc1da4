package sieve

// ArgumentList models the RFC 5228 "arguments" production: the ordered
// arguments of a command or test, plus any subsidiary tests (for "if",
// "anyof", "not" and friends).
type ArgumentList struct {
	Node

	args     []*Argument
	tests    []*Test
	numbered []*Argument
}

// NewArgumentList returns an empty arguments production.
func NewArgumentList() *ArgumentList {
	l := &ArgumentList{}
	l.init("arguments")
	return l
}

// Append adds a to the argument list. A nil a is ignored.
func (l *ArgumentList) Append(a *Argument) {
	if a == nil {
		return
	}
	l.args = append(l.args, a)
	a.SetParent(&l.Node)
}

// Arguments returns the plain arguments in source order. The returned
// slice may be empty.
func (l *ArgumentList) Arguments() []*Argument {
	return l.args
}

// AppendTest adds t to the subsidiary test list. A nil t is ignored.
func (l *ArgumentList) AppendTest(t *Test) {
	if t == nil {
		return
	}
	l.tests = append(l.tests, t)
	t.SetParent(&l.Node)
}

// Tests returns the subsidiary tests in source order. The returned slice
// may be empty.
func (l *ArgumentList) Tests() []*Test {
	return l.tests
}

// ArgumentFollowingTag makes sure that tag occurs either zero or one
// times in the argument list, and returns the argument following it.
// Records an error if tag occurs more than once, or occurs as the last
// argument. Returns nil if tag does not occur or has no follower. Both
// the tag and the follower are marked parsed.
func (l *ArgumentList) ArgumentFollowingTag(tag string) *Argument {
	var firstTag *Argument
	var result *Argument
	for i, a := range l.args {
		if a.Tag() == tag {
			if firstTag != nil {
				firstTag.SetError("Tag used twice: " + tag)
				a.SetError("Tag used twice: " + tag)
			} else {
				firstTag = a
				firstTag.SetParsed(true)
				if i+1 < len(l.args) {
					result = l.args[i+1]
					result.SetParsed(true)
				} else {
					firstTag.SetError("Tag not followed by argument: " + tag)
				}
			}
		}
	}
	return result
}

// TakeTaggedString looks for tag and returns the value of the following
// string, or an empty string if tag does not occur. Records an error if
// anything looks wrong. Marks both arguments parsed.
func (l *ArgumentList) TakeTaggedString(tag string) string {
	a := l.ArgumentFollowingTag(tag)
	if a == nil {
		return ""
	}
	a.AssertString()
	if len(a.StringList()) > 0 {
		return a.StringList()[0]
	}
	return ""
}

// TakeTaggedStringList looks for tag and returns the following string
// list, or nil if tag does not occur. Records an error if anything looks
// wrong. Marks both arguments parsed.
func (l *ArgumentList) TakeTaggedStringList(tag string) []string {
	a := l.ArgumentFollowingTag(tag)
	if a == nil {
		return nil
	}
	a.AssertStringList()
	return a.StringList()
}

// TakeTaggedNumber looks for tag and returns the following number, or 0
// if tag does not occur. Records an error if anything looks wrong. Marks
// both arguments parsed.
func (l *ArgumentList) TakeTaggedNumber(tag string) uint64 {
	a := l.ArgumentFollowingTag(tag)
	if a == nil {
		return 0
	}
	a.AssertNumber()
	return a.Number()
}

// FindTag finds the argument tagged tag and returns it, marked parsed.
// If tag occurs more than once, every occurrence is flagged as bad and
// the first returned. Returns nil if tag does not occur.
func (l *ArgumentList) FindTag(tag string) *Argument {
	var first *Argument
	for _, a := range l.args {
		if a.Tag() != tag {
			continue
		}
		if first == nil {
			first = a
		} else {
			first.SetError("Tag occurs twice: " + tag)
			a.SetError("Tag occurs twice: " + tag)
		}
	}
	if first != nil {
		first.SetParsed(true)
	}
	return first
}

// AllowOneTag asserts that at most one of the listed tags occurs. When
// two or more occur, the first is flagged as the conflict source and
// each later one names it. The flagged tags are marked parsed, so
// positional arguments and the unparsed sweep leave those diagnostics
// in place.
func (l *ArgumentList) AllowOneTag(tags ...string) {
	var seen []*Argument
	for _, a := range l.args {
		t := a.Tag()
		if t == "" {
			continue
		}
		for _, want := range tags {
			if t == want {
				seen = append(seen, a)
				break
			}
		}
	}
	if len(seen) < 2 {
		return
	}
	first := seen[0]
	first.SetError("Mutually exclusive tags used")
	first.SetParsed(true)
	for _, a := range seen[1:] {
		a.SetError("Tag " + first.Tag() + " conflicts with " + a.Tag())
		a.SetParsed(true)
	}
}

// NumberRemainingArguments snapshots the currently unparsed arguments
// into the numbering sequence used by TakeString, TakeStringList,
// TakeNumber and TakeArgument. The first remaining argument has number
// 1. A later call replaces the snapshot. The snapshot itself does not
// mark anything parsed.
func (l *ArgumentList) NumberRemainingArguments() {
	l.numbered = l.numbered[:0]
	for _, a := range l.args {
		if !a.Parsed() {
			l.numbered = append(l.numbered, a)
		}
	}
}

// FlagUnparsedAsBad marks every still-unparsed argument as an error. The
// analyzer never looked at them, so something must be wrong.
func (l *ArgumentList) FlagUnparsedAsBad() {
	for _, a := range l.args {
		switch {
		case a.Parsed():
			// it's okay
		case a.valueCalls() > 1:
			a.SetError("Argument has several values")
		case a.Number() != 0:
			a.SetError("Why is this number here?")
		case a.HasStringList():
			a.SetError("Why is this string/list here?")
		case a.Tag() != "":
			a.SetError("Unknown tag: " + a.Tag())
		default:
			a.SetError("What happened? I'm dazed and confused")
		}
	}
}

// TakeStringList fetches numbered argument n (1-based), asserts that it
// is a string list, marks it parsed, and returns the list. Records an
// error on the argument list itself if there is no argument n.
func (l *ArgumentList) TakeStringList(n int) []string {
	a := l.numberedArgument(n)
	if a == nil {
		l.SetError("Missing string/list argument")
		return nil
	}
	a.AssertStringList()
	a.SetParsed(true)
	return a.StringList()
}

// TakeString fetches numbered argument n (1-based), asserts that it is a
// single string, marks it parsed, and returns the string. Records an
// error on the argument list itself if there is no argument n.
func (l *ArgumentList) TakeString(n int) string {
	a := l.numberedArgument(n)
	if a == nil {
		l.SetError("Missing string argument")
		return ""
	}
	a.AssertString()
	a.SetParsed(true)
	if len(a.StringList()) > 0 {
		return a.StringList()[0]
	}
	return ""
}

// TakeNumber fetches numbered argument n (1-based), asserts that it is a
// number, marks it parsed, and returns it. Records an error on the
// argument list itself if there is no argument n.
func (l *ArgumentList) TakeNumber(n int) uint64 {
	a := l.numberedArgument(n)
	if a == nil {
		l.SetError("Missing numeric argument")
		return 0
	}
	a.AssertNumber()
	a.SetParsed(true)
	return a.Number()
}

// TakeArgument returns numbered argument n (1-based), or nil if there is
// no such argument. It neither marks the argument parsed nor checks
// anything.
func (l *ArgumentList) TakeArgument(n int) *Argument {
	return l.numberedArgument(n)
}

func (l *ArgumentList) numberedArgument(n int) *Argument {
	if n < 1 || n > len(l.numbered) {
		return nil
	}
	return l.numbered[n-1]
}

// TagError records err, either on an argument belonging to tag or, if
// tag cannot be found at all, on the argument list itself.
func (l *ArgumentList) TagError(tag, err string) {
	t := l.ArgumentFollowingTag(tag)
	if t == nil {
		t = l.FindTag(tag)
	}
	if t != nil {
		t.SetError(err)
	} else {
		l.SetError(err)
	}
}
