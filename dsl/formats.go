package dsl

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

func isEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// isUUID accepts only the canonical 8-4-4-4-12 form; uuid.Parse alone also
// accepts urn and braced forms.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	return uuid.Validate(s) == nil
}

func isDatetime(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
