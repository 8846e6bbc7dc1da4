package helpers

import (
	"fmt"
	"net/mail"
	"strings"
)

// ParseSingleAddress asserts that s encodes exactly one local@domain
// address. SIEVE actions such as "redirect" and tags such as
// vacation's ":from" take one plain address; display names are
// tolerated, address groups and lists are not. Returns nil on success.
func ParseSingleAddress(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("empty address")
	}

	addrs, err := mail.ParseAddressList(s)
	if err != nil {
		// ParseAddressList rejects a bare single address only when it
		// is genuinely malformed; report the underlying reason.
		addr, err2 := mail.ParseAddress(s)
		if err2 != nil {
			return fmt.Errorf("parsing address: %w", err2)
		}
		addrs = []*mail.Address{addr}
	}
	if len(addrs) != 1 {
		return fmt.Errorf("expected one address, got %d", len(addrs))
	}

	local, domain, ok := strings.Cut(addrs[0].Address, "@")
	if !ok || local == "" || domain == "" {
		return fmt.Errorf("address %q is not of the form local@domain", addrs[0].Address)
	}
	return nil
}
