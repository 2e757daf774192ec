package validators

import (
	"net"
	"net/mail"
	"strings"
)

// IsEmailValid checks the address syntax and, when checkDomain is set,
// that its domain resolves (MX first, then A/AAAA).
func IsEmailValid(email string, checkDomain bool) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	if !checkDomain {
		return true
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
