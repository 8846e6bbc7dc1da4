package sieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, source string) (*Parser, *Script) {
	t.Helper()
	p := NewParser(nil)
	script := p.Parse(source)
	script.Analyze()
	return p, script
}

func errorMessages(p *Parser) []string {
	var msgs []string
	for _, n := range p.BadProductions() {
		msgs = append(msgs, n.ErrorMessage())
	}
	return msgs
}

func TestCleanScript(t *testing.T) {
	p, script := analyze(t, `
require ["fileinto"];
if anyof(true) {
	fileinto "Spam";
}
`)
	assert.Empty(t, errorMessages(p))

	// the block sits under the script root, where require declared
	// fileinto
	ifCmd := script.Commands()[1]
	require.NotNil(t, ifCmd.Block())
	assert.True(t, ifCmd.Block().ExtensionVisible("fileinto"))
}

func TestConflictingMatchTypesScript(t *testing.T) {
	p, _ := analyze(t, `if header :is :contains "Subject" "x" { keep; }`)
	msgs := errorMessages(p)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "Mutually exclusive tags used")
}

func TestCyrusMailboxScript(t *testing.T) {
	p, _ := analyze(t, `fileinto "INBOX.Archive.2020";`)
	msgs := errorMessages(p)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Cyrus syntax")
	assert.Contains(t, msgs[0], `"Archive/2020"`)
}

func TestUnsupportedRequireScript(t *testing.T) {
	p, script := analyze(t, `require ["nosuchext"]; keep;`)
	msgs := errorMessages(p)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], `"nosuchext"`)
	// keep itself is fine
	assert.Empty(t, script.Commands()[1].ErrorMessage())
}

func TestIhaveSuppressesCascade(t *testing.T) {
	p, script := analyze(t, `
if ihave ["frobnicate"] {
	frobnicate :wibble 3;
} else {
	keep;
}
`)
	ifCmd := script.Commands()[0]
	require.NotNil(t, ifCmd.Block())
	assert.True(t, ifCmd.Block().IhaveFailed())

	frob := ifCmd.Block().Commands()[0]
	assert.Equal(t, "Command unknown: frobnicate", frob.ErrorMessage())

	// inside the guarded block an error, once recorded, is frozen;
	// retrying with a different message changes nothing
	frob.SetError("something else entirely")
	assert.Equal(t, "Command unknown: frobnicate", frob.ErrorMessage())

	// the else branch analyzed normally
	elseCmd := script.Commands()[1]
	assert.Equal(t, "else", elseCmd.Identifier())
	assert.Empty(t, elseCmd.ErrorMessage())
	assert.Empty(t, elseCmd.Block().Commands()[0].ErrorMessage())

	// the script used ihave without requiring it
	assert.Contains(t, p.NeededExtensions(), "ihave")
}

func TestElseWithoutIf(t *testing.T) {
	p, _ := analyze(t, `else { keep; }`)
	msgs := errorMessages(p)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "only permitted after if/elsif")
}

func TestBadProductionsInSourceOrder(t *testing.T) {
	p, _ := analyze(t, `
fileinto "INBOX.One.Two";
frobnicate;
`)
	bad := p.BadProductions()
	require.Len(t, bad, 2)
	assert.Less(t, bad[0].Start(), bad[1].Start())
	assert.Contains(t, bad[0].ErrorMessage(), "Cyrus syntax")
	assert.Contains(t, bad[1].ErrorMessage(), "Command unknown")
}

func TestNeededExtensionsCollected(t *testing.T) {
	p, _ := analyze(t, `fileinto :copy "Work";`)
	needed := p.NeededExtensions()
	assert.Contains(t, needed, "fileinto")
	assert.Contains(t, needed, "copy")
}

func TestRequireSilencesNeeded(t *testing.T) {
	p, _ := analyze(t, `require ["fileinto", "copy"]; fileinto :copy "Work";`)
	assert.Empty(t, p.NeededExtensions())
}

func TestRestrictedExtensionSet(t *testing.T) {
	p := NewParser([]string{"fileinto"})
	script := p.Parse(`require ["fileinto", "vacation"]; keep;`)
	script.Analyze()
	msgs := errorMessages(p)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], `"vacation"`)
	assert.NotContains(t, msgs[0], `"fileinto"`)
}

func TestParserSpans(t *testing.T) {
	source := `keep; discard;`
	p := NewParser(nil)
	script := p.Parse(source)
	require.Len(t, script.Commands(), 2)

	keep := script.Commands()[0]
	assert.Equal(t, 0, keep.Start())
	assert.Equal(t, len("keep;"), keep.End())

	discard := script.Commands()[1]
	assert.Equal(t, len("keep; "), discard.Start())
	assert.Equal(t, len(source), discard.End())
}

func TestParserComments(t *testing.T) {
	p, _ := analyze(t, `
# hash comment
keep; /* bracketed
comment */ stop;
`)
	assert.Empty(t, errorMessages(p))
}

func TestParserNumberQuantifiers(t *testing.T) {
	p := NewParser(nil)
	script := p.Parse(`if size :over 2K { discard; }`)
	script.Analyze()
	assert.Empty(t, errorMessages(p))

	test := script.Commands()[0].Arguments().Tests()[0]
	assert.Equal(t, uint64(2048), test.SizeLimit())
	assert.True(t, test.SizeOverLimit())
}

func TestParserMultiLineString(t *testing.T) {
	p := NewParser(nil)
	script := p.Parse(`require ["vacation"];
vacation text:
I am away.
..literal leading dot
.
;
`)
	script.Analyze()
	assert.Empty(t, errorMessages(p))

	vacation := script.Commands()[1]
	args := vacation.Arguments().Arguments()
	require.Len(t, args, 1)
	assert.Equal(t, "I am away.\n.literal leading dot\n", args[0].StringList()[0])
}

func TestParserQuotedStringEscapes(t *testing.T) {
	p := NewParser(nil)
	script := p.Parse(`fileinto "a \"quoted\" \\ name";`)
	args := script.Commands()[0].Arguments().Arguments()
	require.Len(t, args, 1)
	assert.Equal(t, `a "quoted" \ name`, args[0].StringList()[0])
}

func TestParserNestedTests(t *testing.T) {
	p, script := analyze(t, `
if allof (not true, anyof (false, exists ["X-Loop"])) {
	discard;
}
`)
	assert.Empty(t, errorMessages(p))

	allof := script.Commands()[0].Arguments().Tests()[0]
	assert.Equal(t, "allof", allof.Identifier())
	require.Len(t, allof.Arguments().Tests(), 2)
	assert.Equal(t, "not", allof.Arguments().Tests()[0].Identifier())
	assert.Equal(t, "anyof", allof.Arguments().Tests()[1].Identifier())
}

func TestParserMissingSemicolon(t *testing.T) {
	p, _ := analyze(t, `keep`)
	msgs := errorMessages(p)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "not terminated")
}

func TestParserUnterminatedString(t *testing.T) {
	p, _ := analyze(t, `fileinto "oops;`)
	found := false
	for _, msg := range errorMessages(p) {
		if msg == "Quoted string is not terminated" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	p := NewParser(nil)
	script := p.Parse(`fileinto "INBOX.One.Two"; keep;`)
	script.Analyze()
	first := errorMessages(p)
	script.Analyze()
	assert.Equal(t, first, errorMessages(p))
}

func TestRequireAfterCommand(t *testing.T) {
	p, _ := analyze(t, `keep; require ["fileinto"];`)
	msgs := errorMessages(p)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "only permitted as the first command")
}

func TestStringListArgument(t *testing.T) {
	p := NewParser(nil)
	script := p.Parse(`require ["fileinto", "copy", "vacation"];`)
	script.Analyze()
	assert.Empty(t, errorMessages(p))

	args := script.Commands()[0].Arguments().Arguments()
	require.Len(t, args, 1)
	assert.Equal(t, []string{"fileinto", "copy", "vacation"}, args[0].StringList())
}
