package sieve

import (
	"strconv"
	"strings"
)

// MatchType is the match modifier of a test: ":is", ":contains",
// ":matches", or the relational ":value"/":count" (RFC 5231).
type MatchType int

const (
	Is MatchType = iota
	Contains
	Matches
	Value
	Count
)

// MatchOperator is the relational operator given with ":value" or
// ":count".
type MatchOperator int

const (
	None MatchOperator = iota
	GT
	GE
	LT
	LE
	EQ
	NE
)

// AddressPart selects which part of an address a test compares
// (RFC 5228 section 5.1, RFC 5233).
type AddressPart int

const (
	NoAddressPart AddressPart = iota
	Localpart
	Domain
	User
	Detail
	All
)

// BodyMatchType selects which rendition of the body a "body" test
// matches against (RFC 5173).
type BodyMatchType int

const (
	Rfc822 BodyMatchType = iota
	Text
	SpecifiedTypes
)

// Test models the RFC 5228 "test" production. After Parse it also holds
// the normalized modifiers and operands the execution engine needs.
type Test struct {
	Node

	identifier string
	arguments  *ArgumentList

	matchType     MatchType
	matchOperator MatchOperator
	addressPart   AddressPart
	comparator    *Collation
	bodyMatchType BodyMatchType

	headers       []string
	envelopeParts []string
	keys          []string
	contentTypes  []string
	datePart      string
	zone          string
	sizeOver      bool
	sizeLimit     uint64
}

// NewTest returns an empty test production.
func NewTest() *Test {
	t := &Test{bodyMatchType: Text}
	t.init("test")
	return t
}

// SetIdentifier records the test's identifier, lowercased.
func (t *Test) SetIdentifier(i string) {
	t.identifier = asciiLower(i)
}

// Identifier returns what SetIdentifier set, or an empty string.
func (t *Test) Identifier() string {
	return t.identifier
}

// SetArguments records the test's argument list. A nil l is ignored.
func (t *Test) SetArguments(l *ArgumentList) {
	if l == nil {
		return
	}
	t.arguments = l
	l.SetParent(&t.Node)
}

// Arguments returns what SetArguments set, or nil.
func (t *Test) Arguments() *ArgumentList {
	return t.arguments
}

// Parse performs the second-pass semantic analysis of this test: checks
// that the identifier is supported and that the arguments fit its
// schema.
func (t *Test) Parse() {
	if t.arguments == nil {
		t.SetArguments(NewArgumentList())
	}

	var ihaveExtensions []string

	switch t.identifier {
	case "address":
		t.findComparator()
		t.findMatchType()
		t.findAddressPart()
		t.arguments.NumberRemainingArguments()
		t.headers = t.takeHeaderFieldList(1)
		t.keys = t.arguments.TakeStringList(2)

	case "allof", "anyof":
		if len(t.arguments.Arguments()) > 0 {
			t.SetError("Test '" + t.identifier +
				"' does not accept arguments, only a list of tests")
		}
		if len(t.arguments.Tests()) == 0 {
			t.SetError("Need at least one subsidiary test")
		}
		for _, sub := range t.arguments.Tests() {
			sub.Parse()
			if sub.IhaveFailed() {
				t.SetIhaveFailed()
			}
			t.AddExtensions(sub.AddedExtensions())
		}

	case "envelope":
		t.Require("envelope")
		t.findComparator()
		t.findMatchType()
		t.findAddressPart()
		t.arguments.NumberRemainingArguments()
		t.envelopeParts = t.arguments.TakeStringList(1)
		t.keys = t.arguments.TakeStringList(2)
		for i, part := range t.envelopeParts {
			s := asciiLower(part)
			if s == "from" || s == "to" {
				t.envelopeParts[i] = s
			} else {
				// extensions would define more parts, after the right
				// require; the string argument itself is gone, so the
				// test carries the error
				t.SetError("Unsupported envelope part: " + part)
			}
		}

	case "exists":
		t.arguments.NumberRemainingArguments()
		t.headers = t.takeHeaderFieldList(1)

	case "false", "true":
		// I wish all the tests were this easy

	case "header":
		t.findComparator()
		t.findMatchType()
		t.arguments.NumberRemainingArguments()
		t.headers = t.takeHeaderFieldList(1)
		t.keys = t.arguments.TakeStringList(2)

	case "date", "currentdate":
		t.Require("date")
		t.findComparator()
		t.findMatchType()

		t.zone = t.arguments.TakeTaggedString(":zone")
		if t.zone == "" && t.arguments.FindTag(":originalzone") != nil {
			t.zone = "-0000"
		}

		t.arguments.NumberRemainingArguments()

		n := 1
		if t.identifier == "date" {
			t.headers = t.takeHeaderFieldList(n)
			n++
			if len(t.headers) > 0 && len(t.headers) != 1 {
				t.SetError("Only one date field may be specified")
			}
		}
		t.datePart = t.arguments.TakeString(n)
		n++
		t.keys = t.arguments.TakeStringList(n)

	case "not":
		if len(t.arguments.Arguments()) > 0 {
			t.SetError("Test 'not' does not accept arguments, only a test")
		}
		if len(t.arguments.Tests()) != 1 {
			t.SetError("Test 'not' needs exactly one subsidiary test")
		} else {
			t.arguments.Tests()[0].Parse()
		}

	case "size":
		t.arguments.AllowOneTag(":over", ":under")
		if t.arguments.FindTag(":over") != nil {
			t.sizeOver = true
			t.sizeLimit = t.arguments.TakeTaggedNumber(":over")
		} else if t.arguments.FindTag(":under") != nil {
			t.sizeOver = false
			t.sizeLimit = t.arguments.TakeTaggedNumber(":under")
		}

	case "body":
		t.Require("body")
		t.findComparator()
		t.findMatchType()
		t.arguments.AllowOneTag(":raw", ":text", ":content")
		if t.arguments.FindTag(":raw") != nil {
			t.bodyMatchType = Rfc822
		} else if t.arguments.FindTag(":text") != nil {
			t.bodyMatchType = Text
		} else if t.arguments.FindTag(":content") != nil {
			t.bodyMatchType = SpecifiedTypes
			t.contentTypes = t.arguments.TakeTaggedStringList(":content")
		}
		t.arguments.NumberRemainingArguments()
		t.keys = t.arguments.TakeStringList(1)

	case "ihave":
		t.Require("ihave")
		t.arguments.NumberRemainingArguments()
		ihaveExtensions = t.arguments.TakeStringList(1)

	case "valid_notify_method":
		t.Require("enotify")
		t.arguments.NumberRemainingArguments()
		if urls := t.arguments.TakeStringList(1); len(urls) == 0 {
			t.SetError("No URLs")
		}

	case "notify_method_capability":
		t.Require("enotify")
		t.findComparator()
		t.findMatchType()
		t.arguments.NumberRemainingArguments()
		NewNotifyMethod(t.arguments.TakeString(1),
			t.arguments.TakeArgument(1), &t.Node)
		t.arguments.TakeString(2) // capability name, matched case-insensitively
		t.keys = t.arguments.TakeStringList(3)

	default:
		t.SetError("Unknown test: " + t.identifier)
	}

	t.arguments.FlagUnparsedAsBad()

	// if the ihave was correctly parsed and names something we don't
	// support, errors already recorded below this branch are frozen
	if t.identifier == "ihave" && t.ErrorMessage() == "" {
		var have []string
		failed := false
		for _, ext := range ihaveExtensions {
			if t.supported(ext) {
				have = append(have, ext)
			} else {
				failed = true
			}
		}
		if failed {
			t.SetIhaveFailed()
		} else {
			t.AddExtensions(have)
		}
	}
}

// findComparator finds any ":comparator" tag and records the named
// collation. No tag means the default, i;ascii-casemap.
func (t *Test) findComparator() {
	a := t.arguments.TakeTaggedString(":comparator")
	if a == "" {
		t.Require("comparator-i;ascii-casemap")
		return
	}

	t.comparator = CollationByName(a)
	if t.comparator == nil {
		t.arguments.TagError(":comparator", "Unknown comparator: "+a)
	} else {
		t.Require("comparator-" + t.comparator.Name)
	}
}

// findMatchType finds the match-type tags, enforcing their mutual
// exclusion, and for ":value"/":count" parses the mandatory relational
// operator.
func (t *Test) findMatchType() {
	t.arguments.AllowOneTag(":is", ":matches", ":contains", ":value", ":count")
	if t.arguments.FindTag(":is") != nil {
		t.matchType = Is
	} else if t.arguments.FindTag(":matches") != nil {
		t.matchType = Matches
	} else if t.arguments.FindTag(":contains") != nil {
		t.matchType = Contains
	} else if t.arguments.FindTag(":value") != nil {
		t.matchType = Value
	} else if t.arguments.FindTag(":count") != nil {
		t.matchType = Count
	}

	if t.matchType == Value || t.matchType == Count {
		t.Require("relational")

		tag := ":value"
		if t.matchType == Count {
			tag = ":count"
		}

		switch s := strings.ToUpper(t.arguments.TakeTaggedString(tag)); s {
		case "GT":
			t.matchOperator = GT
		case "GE":
			t.matchOperator = GE
		case "LT":
			t.matchOperator = LT
		case "LE":
			t.matchOperator = LE
		case "EQ":
			t.matchOperator = EQ
		case "NE":
			t.matchOperator = NE
		default:
			t.arguments.TagError(tag, "Unknown relational operator: "+s)
		}
	}
}

// findAddressPart finds the address-part tags, enforcing their mutual
// exclusion. ":user" and ":detail" belong to the subaddress extension.
func (t *Test) findAddressPart() {
	t.arguments.AllowOneTag(":localpart", ":domain", ":user", ":detail", ":all")

	if t.arguments.FindTag(":localpart") != nil {
		t.addressPart = Localpart
	} else if t.arguments.FindTag(":domain") != nil {
		t.addressPart = Domain
	} else if t.arguments.FindTag(":user") != nil {
		t.addressPart = User
	} else if t.arguments.FindTag(":detail") != nil {
		t.addressPart = Detail
	} else if t.arguments.FindTag(":all") != nil {
		t.addressPart = All
	}

	if t.addressPart == User || t.addressPart == Detail {
		t.Require("subaddress")
	}
}

// takeHeaderFieldList fetches numbered argument n as a string list and
// checks that each entry is a legal RFC 5322 field-name (ASCII 33..126
// except colon). When the test is "address", each entry must also name
// an address-valued field. The entries are normalized to header casing
// in place.
func (t *Test) takeHeaderFieldList(n int) []string {
	a := t.arguments.TakeArgument(n)
	if a == nil {
		t.SetError("Missing header field list")
		return nil
	}

	a.SetParsed(true)
	a.AssertStringList()
	list := a.StringList()
	for i, s := range list {
		if s == "" {
			a.SetError("Empty header field names are not allowed")
		}
		for j := 0; j < len(s); j++ {
			if s[j] < 33 || s[j] == ':' || s[j] > 126 {
				a.SetError("Illegal character (ASCII " +
					strconv.Itoa(int(s[j])) +
					") seen in header field name: " + s)
			}
		}
		if t.identifier == "address" && !AddressField(s) {
			a.SetError("Not an address field: " + s)
		}
		list[i] = HeaderCase(s)
	}
	return list
}

// MatchTypeValue returns the match type specified, or Is if none was.
func (t *Test) MatchTypeValue() MatchType {
	return t.matchType
}

// MatchOperatorValue returns the relational operator, or None if the
// match type is not Value or Count.
func (t *Test) MatchOperatorValue() MatchOperator {
	return t.matchOperator
}

// AddressPartValue returns the address part specified, or NoAddressPart
// if none was.
func (t *Test) AddressPartValue() AddressPart {
	return t.addressPart
}

// Comparator returns the collation specified with ":comparator", or nil
// for the default i;ascii-casemap.
func (t *Test) Comparator() *Collation {
	return t.comparator
}

// BodyMatchTypeValue returns the body match type, or Text for the
// default. Meaningful only when the identifier is "body".
func (t *Test) BodyMatchTypeValue() BodyMatchType {
	return t.bodyMatchType
}

// Headers returns the header fields this test pertains to, header-cased,
// or nil for tests that look at no header.
func (t *Test) Headers() []string {
	return t.headers
}

// Keys returns the match keys, or nil for tests without keys (e.g.
// "exists" or "true").
func (t *Test) Keys() []string {
	return t.keys
}

// EnvelopeParts returns the envelope parts an "envelope" test looks at,
// lowercased, or nil for other tests.
func (t *Test) EnvelopeParts() []string {
	return t.envelopeParts
}

// DatePart returns the date part for "date"/"currentdate", or "".
func (t *Test) DatePart() string {
	return t.datePart
}

// DateZone returns the zone in "[+-]NNNN" form for "date"/"currentdate",
// with "-0000" standing in for ":originalzone". Empty for other tests.
func (t *Test) DateZone() string {
	return t.zone
}

// ContentTypes returns the content types for a "body :content" test.
func (t *Test) ContentTypes() []string {
	return t.contentTypes
}

// SizeOverLimit reports whether the test is "size" with ":over".
func (t *Test) SizeOverLimit() bool {
	return t.sizeOver
}

// SizeLimit returns the "size" test's byte limit, or 0 for other tests.
func (t *Test) SizeLimit() uint64 {
	return t.sizeLimit
}
