package sieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(id string, args ...*Argument) *Test {
	t := NewTest()
	t.SetIdentifier(id)
	t.SetArguments(argList(args...))
	return t
}

func TestUnknownTest(t *testing.T) {
	n := testNode("frobnicate")
	n.Parse()
	assert.Equal(t, "Unknown test: frobnicate", n.ErrorMessage())
}

func TestTrueFalseTakeNothing(t *testing.T) {
	for _, id := range []string{"true", "false"} {
		n := testNode(id)
		n.Parse()
		assert.Empty(t, n.ErrorMessage(), id)

		stray := strArg("x")
		n2 := testNode(id, stray)
		n2.Parse()
		assert.Equal(t, "Why is this string/list here?", stray.ErrorMessage())
	}
}

func TestHeaderTest(t *testing.T) {
	n := testNode("header",
		tagArg(":contains"),
		strArg("Subject"),
		strArg("urgent"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, Contains, n.MatchTypeValue())
	assert.Equal(t, []string{"Subject"}, n.Headers())
	assert.Equal(t, []string{"urgent"}, n.Keys())
}

func TestHeaderMutuallyExclusiveMatchTypes(t *testing.T) {
	is := tagArg(":is")
	contains := tagArg(":contains")
	n := testNode("header", is, contains, strArg("Subject"), strArg("x"))
	n.Parse()
	assert.Equal(t, "Mutually exclusive tags used", is.ErrorMessage())
	assert.Equal(t, "Tag :is conflicts with :contains", contains.ErrorMessage())
}

func TestHeaderCasingNormalized(t *testing.T) {
	n := testNode("header", strArg("subject", "x-SPAM-flag"), strArg("x"))
	n.Parse()
	assert.Equal(t, []string{"Subject", "X-Spam-Flag"}, n.Headers())
}

func TestHeaderFieldNameValidation(t *testing.T) {
	fields := strArg("Sub ject")
	n := testNode("header", fields, strArg("x"))
	n.Parse()
	assert.Contains(t, fields.ErrorMessage(), "Illegal character (ASCII 32)")

	empty := strArg("")
	n2 := testNode("header", empty, strArg("x"))
	n2.Parse()
	assert.Contains(t, empty.ErrorMessage(), "Empty header field names")
}

func TestAddressTest(t *testing.T) {
	n := testNode("address",
		tagArg(":is"), tagArg(":domain"),
		strArg("From", "To"),
		strArg("example.com"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, Domain, n.AddressPartValue())
	assert.Equal(t, []string{"From", "To"}, n.Headers())
}

func TestAddressRejectsNonAddressField(t *testing.T) {
	fields := strArg("Subject")
	n := testNode("address", fields, strArg("x"))
	n.Parse()
	assert.Equal(t, "Not an address field: Subject", fields.ErrorMessage())
}

func TestAddressPartsMutuallyExclusive(t *testing.T) {
	local := tagArg(":localpart")
	domain := tagArg(":domain")
	n := testNode("address", local, domain, strArg("From"), strArg("x"))
	n.Parse()
	assert.Equal(t, "Mutually exclusive tags used", local.ErrorMessage())
}

func TestSubaddressPartsRequireExtension(t *testing.T) {
	p := NewParser(nil)
	n := testNode("address", tagArg(":detail"), strArg("To"), strArg("x"))
	n.SetParser(p)
	n.Parse()
	assert.Contains(t, p.NeededExtensions(), "subaddress")
}

func TestEnvelopeParts(t *testing.T) {
	n := testNode("envelope", strArg("From", "TO"), strArg("mta.example.com"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, []string{"from", "to"}, n.EnvelopeParts())

	n2 := testNode("envelope", strArg("bcc"), strArg("x"))
	n2.Parse()
	assert.Equal(t, "Unsupported envelope part: bcc", n2.ErrorMessage())
}

func TestExistsTest(t *testing.T) {
	n := testNode("exists", strArg("X-Loop", "Received"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, []string{"X-Loop", "Received"}, n.Headers())
}

func TestSizeTest(t *testing.T) {
	n := testNode("size", tagArg(":over"), numArg(0))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.True(t, n.SizeOverLimit())
	assert.Equal(t, uint64(0), n.SizeLimit())

	n2 := testNode("size", tagArg(":under"), numArg(100))
	n2.Parse()
	assert.False(t, n2.SizeOverLimit())
	assert.Equal(t, uint64(100), n2.SizeLimit())
}

func TestSizeOverUnderConflict(t *testing.T) {
	over := tagArg(":over")
	under := tagArg(":under")
	n := testNode("size", over, numArg(1), under, numArg(2))
	n.Parse()
	assert.Equal(t, "Mutually exclusive tags used", over.ErrorMessage())
	assert.Equal(t, "Tag :over conflicts with :under", under.ErrorMessage())
}

func TestRelationalOperators(t *testing.T) {
	ops := map[string]MatchOperator{
		"gt": GT, "GE": GE, "lt": LT, "LE": LE, "eq": EQ, "NE": NE,
	}
	for s, want := range ops {
		n := testNode("header",
			tagArg(":count"), strArg(s),
			strArg("Received"), strArg("3"))
		n.Parse()
		assert.Empty(t, n.ErrorMessage(), s)
		assert.Equal(t, want, n.MatchOperatorValue(), s)
		assert.Equal(t, Count, n.MatchTypeValue(), s)
	}
}

func TestRelationalOperatorUnknown(t *testing.T) {
	op := strArg("almost")
	n := testNode("header",
		tagArg(":value"), op,
		strArg("Received"), strArg("3"))
	n.Parse()
	assert.Equal(t, "Unknown relational operator: ALMOST", op.ErrorMessage())
}

func TestComparatorLookup(t *testing.T) {
	n := testNode("header",
		tagArg(":comparator"), strArg("i;octet"),
		strArg("Subject"), strArg("x"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	require.NotNil(t, n.Comparator())
	assert.Equal(t, "i;octet", n.Comparator().Name)
}

func TestComparatorUnknown(t *testing.T) {
	name := strArg("i;nonesuch")
	n := testNode("header",
		tagArg(":comparator"), name,
		strArg("Subject"), strArg("x"))
	n.Parse()
	assert.Equal(t, "Unknown comparator: i;nonesuch", name.ErrorMessage())
}

func TestDefaultComparatorIsRequired(t *testing.T) {
	p := NewParser(nil)
	n := testNode("header", strArg("Subject"), strArg("x"))
	n.SetParser(p)
	n.Parse()
	assert.Contains(t, p.NeededExtensions(), "comparator-i;ascii-casemap")
}

func TestBodyTest(t *testing.T) {
	n := testNode("body", tagArg(":raw"), strArg("confidential"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, Rfc822, n.BodyMatchTypeValue())

	n2 := testNode("body",
		tagArg(":content"), strArg("text/plain", "text/html"),
		strArg("secret"))
	n2.Parse()
	assert.Empty(t, n2.ErrorMessage())
	assert.Equal(t, SpecifiedTypes, n2.BodyMatchTypeValue())
	assert.Equal(t, []string{"text/plain", "text/html"}, n2.ContentTypes())

	n3 := testNode("body", strArg("x"))
	n3.Parse()
	assert.Equal(t, Text, n3.BodyMatchTypeValue())
}

func TestDateTest(t *testing.T) {
	n := testNode("date",
		tagArg(":zone"), strArg("+0200"),
		strArg("Date"), strArg("year"), strArg("2026"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, "+0200", n.DateZone())
	assert.Equal(t, "year", n.DatePart())
	assert.Equal(t, []string{"Date"}, n.Headers())
}

func TestDateOriginalZone(t *testing.T) {
	n := testNode("date",
		tagArg(":originalzone"),
		strArg("Date"), strArg("hour"), strArg("09"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, "-0000", n.DateZone())
}

func TestDateSingleFieldOnly(t *testing.T) {
	n := testNode("date",
		strArg("Date", "Resent-Date"), strArg("year"), strArg("2026"))
	n.Parse()
	assert.Equal(t, "Only one date field may be specified", n.ErrorMessage())
}

func TestCurrentdateTakesNoHeader(t *testing.T) {
	n := testNode("currentdate", strArg("zone"), strArg("+0000"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, "zone", n.DatePart())
	assert.Nil(t, n.Headers())
}

func TestNotArity(t *testing.T) {
	n := testNode("not")
	n.Arguments().AppendTest(testNode("true"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())

	n2 := testNode("not")
	n2.Parse()
	assert.Equal(t, "Test 'not' needs exactly one subsidiary test", n2.ErrorMessage())

	n3 := testNode("not", strArg("x"))
	n3.Arguments().AppendTest(testNode("true"))
	n3.Parse()
	assert.Equal(t, "Test 'not' does not accept arguments, only a test", n3.ErrorMessage())
}

func TestAllofAnyof(t *testing.T) {
	for _, id := range []string{"allof", "anyof"} {
		n := testNode(id)
		n.Arguments().AppendTest(testNode("true"))
		n.Arguments().AppendTest(testNode("false"))
		n.Parse()
		assert.Empty(t, n.ErrorMessage(), id)

		n2 := testNode(id)
		n2.Parse()
		assert.Equal(t, "Need at least one subsidiary test", n2.ErrorMessage(), id)
	}
}

func TestAllofUnionsChildExtensions(t *testing.T) {
	n := testNode("allof")
	child := testNode("ihave", strArg("body"))
	n.Arguments().AppendTest(child)
	n.Parse()
	assert.True(t, n.ExtensionVisible("body"))
	assert.False(t, n.IhaveFailed())
}

func TestAllofInheritsIhaveFailure(t *testing.T) {
	n := testNode("anyof")
	child := testNode("ihave", strArg("frobnicate"))
	n.Arguments().AppendTest(child)
	n.Parse()
	assert.True(t, n.IhaveFailed())
}

func TestIhaveSupported(t *testing.T) {
	n := testNode("ihave", strArg("body", "copy"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.False(t, n.IhaveFailed())
	assert.ElementsMatch(t, []string{"body", "copy"}, n.AddedExtensions())
}

func TestIhaveUnsupported(t *testing.T) {
	n := testNode("ihave", strArg("body", "frobnicate"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.True(t, n.IhaveFailed())
	assert.Empty(t, n.AddedExtensions())
}

func TestValidNotifyMethod(t *testing.T) {
	n := testNode("valid_notify_method", strArg("mailto:x@example.com"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
}

func TestNotifyMethodCapability(t *testing.T) {
	n := testNode("notify_method_capability",
		strArg("mailto:x@example.com"),
		strArg("Online"),
		strArg("yes"))
	n.Parse()
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, []string{"yes"}, n.Keys())
}
