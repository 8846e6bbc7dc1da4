package sieve

import (
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/migadu/sievecheck/helpers"
)

// Command models the RFC 5228 "command" production: an identifier, an
// argument list, and for the control commands a subsidiary block.
type Command struct {
	Node

	identifier       string
	arguments        *ArgumentList
	block            *Block
	requirePermitted bool
}

// NewCommand returns an empty command production.
func NewCommand() *Command {
	c := &Command{}
	c.init("command")
	return c
}

// SetIdentifier records the command's identifier, lowercased. The
// initial value is an empty string, which is not valid.
func (c *Command) SetIdentifier(i string) {
	c.identifier = asciiLower(i)
}

// Identifier returns what SetIdentifier set, or an empty string.
func (c *Command) Identifier() string {
	return c.identifier
}

// SetArguments records the command's argument list. A nil l is ignored.
func (c *Command) SetArguments(l *ArgumentList) {
	if l == nil {
		return
	}
	c.arguments = l
	l.SetParent(&c.Node)
}

// Arguments returns what SetArguments set, or nil.
func (c *Command) Arguments() *ArgumentList {
	return c.arguments
}

// SetBlock records the command's subsidiary block. A nil b is ignored.
func (c *Command) SetBlock(b *Block) {
	if b == nil {
		return
	}
	c.block = b
	b.SetParent(&c.Node)
}

// Block returns what SetBlock set, or nil.
func (c *Command) Block() *Block {
	return c.block
}

// SetRequirePermitted records whether "require" is permitted in this
// position. The parser sets it for commands at the head of the script,
// before any non-require command.
func (c *Command) SetRequirePermitted(p bool) {
	c.requirePermitted = p
}

// RequirePermitted returns what SetRequirePermitted set, or false.
func (c *Command) RequirePermitted() bool {
	return c.requirePermitted
}

// Parse performs the second-pass semantic analysis of this command:
// checks that the identifier is supported and that the arguments fit its
// schema. previous is the identifier of the immediately preceding
// sibling command (empty for the first command in a block) and is used
// to verify if/elsif/else chaining.
func (c *Command) Parse(previous string) {
	if c.arguments == nil {
		c.SetArguments(NewArgumentList())
	}
	if c.identifier == "" {
		c.SetError("Command name is empty")
	}

	wantTest := false
	wantBlock := false

	switch i := c.identifier; i {
	case "if", "elsif":
		wantTest = true
		wantBlock = true
		if i == "elsif" && previous != "if" && previous != "elsif" {
			c.SetError("elsif is only permitted after if/elsif")
		}

	case "else":
		wantBlock = true
		if previous != "if" && previous != "elsif" {
			c.SetError("else is only permitted after if/elsif")
		}

	case "require":
		c.arguments.NumberRemainingArguments()
		var supported []string
		var unsupported []string
		for _, ext := range c.arguments.TakeStringList(1) {
			if c.supported(ext) {
				supported = append(supported, ext)
			} else {
				unsupported = append(unsupported, quoted(ext))
			}
		}
		if len(unsupported) > 0 {
			c.SetError("Each string must be a supported sieve extension. " +
				"These are not: " + strings.Join(unsupported, ", "))
		}
		if !c.requirePermitted {
			c.SetError("require is only permitted as the first command.")
		} else if c.Parent() != nil {
			c.Parent().AddExtensions(supported)
		}

	case "stop", "keep", "discard":
		// nothing needed

	case "reject":
		c.Require("reject")
		if len(c.arguments.Arguments()) > 0 {
			// reject without a reason is acceptable; with one, it must
			// be a string
			c.arguments.NumberRemainingArguments()
			c.arguments.TakeString(1)
		}

	case "ereject":
		c.Require("reject")
		c.arguments.NumberRemainingArguments()
		c.arguments.TakeString(1)

	case "fileinto":
		c.parseFileinto()

	case "redirect":
		c.arguments.FindTag(":copy")
		c.arguments.NumberRemainingArguments()
		s := c.arguments.TakeString(1)
		if err := helpers.ParseSingleAddress(s); err != nil {
			c.SetError("Expected one normal address (local@domain), but got: " + s)
		}

	case "vacation":
		c.parseVacation()

	case "setflag", "addflag", "removeflag":
		c.arguments.NumberRemainingArguments()
		c.arguments.TakeStringList(1)

	case "notify":
		c.parseNotify()

	default:
		if c.identifier != "" {
			c.SetError("Command unknown: " + c.identifier)
		}
	}

	c.arguments.FlagUnparsedAsBad()

	if wantTest {
		if len(c.arguments.Tests()) != 1 {
			c.SetError("Command " + c.identifier + " requires one test")
		}
		for _, t := range c.arguments.Tests() {
			t.Parse()
			if wantBlock && c.block != nil {
				// the block inherits the test's suppression scope or
				// declared extensions, so an ihave guard covers the
				// commands it gates
				if t.IhaveFailed() {
					c.block.SetIhaveFailed()
				} else {
					c.block.AddExtensions(t.AddedExtensions())
				}
			}
		}
	} else {
		for _, t := range c.arguments.Tests() {
			t.SetError("Command " + c.identifier + " does not use tests")
		}
	}

	if wantBlock {
		if c.block == nil {
			c.SetError("Command " + c.identifier +
				" requires a subsidiary {..} block")
		} else {
			prev := ""
			for _, sub := range c.block.Commands() {
				sub.Parse(prev)
				prev = sub.Identifier()
			}
		}
	} else if c.block != nil {
		// don't descend; the block is wrong to begin with
		c.block.SetError("Command " + c.identifier +
			" does not use a subsidiary command block")
	}
}

// parseFileinto validates "fileinto" (RFC 5228 section 4.1) with the
// copy (RFC 3894) and imap4flags (RFC 5232) modifiers.
func (c *Command) parseFileinto() {
	c.Require("fileinto")
	if c.arguments.FindTag(":copy") != nil {
		c.Require("copy")
	}
	if c.arguments.FindTag(":flags") != nil {
		c.Require("imap4flags")
		c.arguments.TakeTaggedStringList(":flags")
	}
	c.arguments.NumberRemainingArguments()
	mailbox := c.arguments.TakeString(1)

	if !helpers.ValidMailboxName(mailbox) && !helpers.ValidMailboxName("/"+mailbox) {
		c.SetError("Expected mailbox name, but got: " + mailbox)
	} else if strings.HasPrefix(mailbox, "INBOX.") {
		// a script that wants to reference a mailbox below INBOX must
		// use the slash hierarchy; dots are Cyrus syntax
		suggestion := strings.Join(strings.Split(mailbox[6:], "."), "/")
		c.SetError(quoted(mailbox) + " is Cyrus syntax; use " +
			quoted(suggestion))
	}
}

// parseVacation validates "vacation" (RFC 5230):
//
//	vacation [":days" number] [":subject" string]
//	         [":from" string] [":addresses" string-list]
//	         [":mime"] [":handle" string] <reason: string>
func (c *Command) parseVacation() {
	c.Require("vacation")

	days := uint64(7)
	if c.arguments.FindTag(":days") != nil {
		days = c.arguments.TakeTaggedNumber(":days")
	}
	if days < 1 || days > 365 {
		c.arguments.TagError(":days", "Number must be 1..365")
	}

	// anything is acceptable as a subject
	c.arguments.TakeTaggedString(":subject")

	if c.arguments.FindTag(":from") != nil {
		c.parseAsAddress(c.arguments.TakeTaggedString(":from"), ":from")
	}

	if c.arguments.FindTag(":addresses") != nil {
		for _, a := range c.arguments.TakeTaggedStringList(":addresses") {
			c.parseAsAddress(a, ":addresses")
		}
	}

	mime := c.arguments.FindTag(":mime") != nil

	c.arguments.TakeTaggedString(":handle")

	c.arguments.NumberRemainingArguments()
	reason := c.arguments.TakeString(1)
	if mime {
		c.parseMimeReason(reason)
	} else if reason == "" {
		c.SetError("Empty vacation text does not make sense")
	}
}

// parseMimeReason checks a vacation reply given with ":mime": the reason
// must be pure ASCII, parse as a MIME entity whose header contains only
// Content-* fields, and carry some actual content.
func (c *Command) parseMimeReason(reason string) {
	if !isASCII(reason) {
		c.SetError(":mime bodies must be all-ASCII, " +
			"8-bit text is not permitted") // so says the RFC
	}

	entity, err := message.Read(strings.NewReader(reason))
	if err != nil {
		c.SetError("While parsing MIME body: " + err.Error())
		return
	}

	fields := entity.Header.Fields()
	for fields.Next() {
		if !strings.HasPrefix(fields.Key(), "Content-") {
			c.SetError("Header field not permitted: " + fields.Key())
		}
	}

	empty := true
	if mr := entity.MultipartReader(); mr != nil {
		if _, err := mr.NextPart(); err == nil {
			empty = false
		}
	} else {
		body, _ := io.ReadAll(entity.Body)
		if strings.TrimSpace(string(body)) != "" {
			empty = false
		}
	}
	if empty {
		c.SetError("Vacation reply does not contain any text")
	}
}

// parseNotify validates "notify" (RFC 5435). The method URI must name a
// notification method the implementation can carry out; the parsed
// ":from" and ":message" values are bound to the method instance.
func (c *Command) parseNotify() {
	c.Require("enotify")

	var from string
	if c.arguments.FindTag(":from") != nil {
		from = c.arguments.TakeTaggedString(":from")
	}

	importance := "2"
	if c.arguments.FindTag(":importance") != nil {
		importance = c.arguments.TakeTaggedString(":importance")
	}
	if len(importance) != 1 || importance[0] < '1' || importance[0] > '3' {
		c.arguments.TagError(":importance", "Importance must be 1, 2 or 3")
	}

	if c.arguments.FindTag(":options") != nil {
		c.arguments.TakeTaggedStringList(":options")
	}

	var msg string
	if c.arguments.FindTag(":message") != nil {
		msg = c.arguments.TakeTaggedString(":message")
	}

	c.arguments.NumberRemainingArguments()
	method := c.arguments.TakeString(1)

	m := NewNotifyMethod(method, c.arguments.TakeArgument(1), &c.Node)
	if m.Valid() {
		if a := c.arguments.FindTag(":from"); a != nil {
			m.SetFrom(from, a)
		}
		if a := c.arguments.FindTag(":message"); a != nil {
			m.SetMessage(msg, a)
		}
	}
}

// parseAsAddress parses s as a single address and records any problem
// against the argument tagged t.
func (c *Command) parseAsAddress(s, t string) {
	if err := helpers.ParseSingleAddress(s); err != nil {
		c.arguments.TagError(t, "Expected one normal address (local@domain), but got: "+s)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

func quoted(s string) string {
	return "\"" + s + "\""
}
