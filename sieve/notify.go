package sieve

import (
	"net/url"
	"strings"

	"github.com/migadu/sievecheck/helpers"
)

// NotifyMethod models one RFC 5435 notification method named by a
// "notify" command or a "notify_method_capability" test. Only the
// "mailto" method (RFC 5436) is implemented.
type NotifyMethod struct {
	owner  *Node
	arg    *Argument
	scheme string
	uri    *url.URL
	valid  bool

	from    string
	message string
}

// NewNotifyMethod parses method as a notification URI. Diagnostics are
// recorded on arg when it is non-nil, else on owner, so errors point at
// the argument that carried the URI.
func NewNotifyMethod(method string, arg *Argument, owner *Node) *NotifyMethod {
	m := &NotifyMethod{owner: owner, arg: arg}

	target := owner
	if arg != nil {
		target = &arg.Node
	}

	if method == "" {
		// TakeString already reported an absent argument; an empty
		// string is not reported.
		return m
	}

	u, err := url.Parse(method)
	if err != nil || u.Scheme == "" {
		target.SetError("Notification method is not a URI: " + method)
		return m
	}
	m.scheme = strings.ToLower(u.Scheme)
	m.uri = u

	switch m.scheme {
	case "mailto":
		if u.Opaque == "" {
			target.SetError("mailto: URI names no recipient")
			return m
		}
		recipient, err := url.QueryUnescape(u.Opaque)
		if err != nil {
			recipient = u.Opaque
		}
		if err := helpers.ParseSingleAddress(recipient); err != nil {
			target.SetError("mailto: recipient is not a valid address: " + recipient)
			return m
		}
		m.valid = true
	default:
		target.SetError("Unsupported notification method: " + m.scheme)
	}
	return m
}

// Valid reports whether the method URI parsed and names a method this
// implementation can carry out.
func (m *NotifyMethod) Valid() bool {
	return m.valid
}

// Scheme returns the URI scheme of the method, lowercased, e.g.
// "mailto".
func (m *NotifyMethod) Scheme() string {
	return m.scheme
}

// SetFrom records the ":from" address for the notification. A malformed
// address is reported on arg.
func (m *NotifyMethod) SetFrom(from string, arg *Argument) {
	if from == "" {
		return
	}
	if err := helpers.ParseSingleAddress(from); err != nil {
		if arg != nil {
			arg.SetError("Expected one normal address (local@domain), but got: " + from)
		} else if m.owner != nil {
			m.owner.SetError("Expected one normal address (local@domain), but got: " + from)
		}
		return
	}
	m.from = from
}

// From returns what SetFrom recorded.
func (m *NotifyMethod) From() string {
	return m.from
}

// SetMessage records the ":message" text for the notification. Any text
// is acceptable.
func (m *NotifyMethod) SetMessage(message string, arg *Argument) {
	_ = arg
	m.message = message
}

// Message returns what SetMessage recorded.
func (m *NotifyMethod) Message() string {
	return m.message
}
