package sieve

// Argument models the RFC 5228 "argument" production. Exactly one of the
// three value shapes should be set by the parser: a tag (starting with
// ':'), a non-negative number, or a string list. Nothing prevents a
// caller from setting several; the calls counter preserves that mistake
// for the unparsed-argument sweep to report.
type Argument struct {
	Node

	tag     string
	number  uint64
	list    []string
	hasList bool
	calls   int
	parsed  bool
}

// NewArgument returns an empty argument production.
func NewArgument() *Argument {
	a := &Argument{}
	a.init("argument")
	return a
}

// SetTag records that this argument is the tag t. t should start
// with ':'.
func (a *Argument) SetTag(t string) {
	a.tag = t
	a.calls++
}

// Tag returns the argument's tag, or an empty string if the argument is
// not a tag.
func (a *Argument) Tag() string {
	return a.tag
}

// SetNumber records that this argument is the number n.
func (a *Argument) SetNumber(n uint64) {
	a.number = n
	a.calls++
}

// Number returns the argument's number, or 0 if the argument is not a
// number.
func (a *Argument) Number() uint64 {
	return a.number
}

// SetStringList records that this argument is the string list s. A nil
// s is ignored.
func (a *Argument) SetStringList(s []string) {
	if s == nil {
		return
	}
	a.list = s
	a.hasList = true
	a.calls++
}

// StringList returns the argument's string list, or nil if the argument
// is not a string or string list.
func (a *Argument) StringList() []string {
	return a.list
}

// HasStringList reports whether SetStringList has been called, even with
// an empty list.
func (a *Argument) HasStringList() bool {
	return a.hasList
}

// SetParsed records whether the semantic pass has consumed this
// argument. The initial value is false.
func (a *Argument) SetParsed(p bool) {
	a.parsed = p
}

// Parsed returns what SetParsed set, or false.
func (a *Argument) Parsed() bool {
	return a.parsed
}

// valueCalls returns how many times a value shape was set on this
// argument.
func (a *Argument) valueCalls() int {
	return a.calls
}

// AssertNumber records an error unless this argument is a number.
func (a *Argument) AssertNumber() {
	if a.tag != "" {
		a.SetError("Expected a number here, not a tag")
	} else if a.hasList {
		a.SetError("Expected a number here, not a string or string list")
	}
}

// AssertString records an error unless this argument is a single string.
func (a *Argument) AssertString() {
	if a.tag != "" {
		a.SetError("Expected a string here, not a tag")
	} else if a.number != 0 {
		a.SetError("Expected a string here, not a number")
	} else if !a.hasList || len(a.list) == 0 {
		a.SetError("Expected a single string here")
	} else if len(a.list) != 1 {
		a.SetError("Expected a single string here, not a string list")
	}
}

// AssertStringList records an error unless this argument is a non-empty
// string list.
func (a *Argument) AssertStringList() {
	if a.tag != "" {
		a.SetError("Expected a string list here, not a tag")
	} else if a.number != 0 {
		a.SetError("Expected a string list here, not a number")
	} else if !a.hasList || len(a.list) == 0 {
		a.SetError("Expected a string list here")
	}
}

// AssertTag records an error unless this argument is a tag.
func (a *Argument) AssertTag() {
	if a.number != 0 {
		a.SetError("Expected a tag here, not a number")
	} else if a.hasList {
		a.SetError("Expected a tag here, not a string or string list")
	}
}
