package profile

import "strings"

// Claims is the loosely-structured attribute bag an identity provider
// presents at authentication time. Every field is untrusted and optional;
// whitespace-only values are treated the same as absent.
type Claims struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	FullName  string
}

func (c Claims) username() string  { return strings.TrimSpace(c.Username) }
func (c Claims) email() string     { return strings.TrimSpace(c.Email) }
func (c Claims) firstName() string { return strings.TrimSpace(c.FirstName) }
func (c Claims) lastName() string  { return strings.TrimSpace(c.LastName) }
func (c Claims) fullName() string  { return strings.TrimSpace(c.FullName) }

// ResolveEmail returns the claimed email or a placeholder deterministic in
// the subject id. The result is never empty.
func (c Claims) ResolveEmail(subjectID string) string {
	if e := c.email(); e != "" {
		return strings.ToLower(e)
	}
	return strings.TrimSpace(subjectID) + "@placeholder.local"
}

// ResolveDisplayName walks the name precedence chain: full name, then
// first+last, then first alone, then last alone, then the local part of the
// resolved email.
func (c Claims) ResolveDisplayName(email string) string {
	if n := c.fullName(); n != "" {
		return n
	}
	first, last := c.firstName(), c.lastName()
	if first != "" && last != "" {
		return first + " " + last
	}
	if first != "" {
		return first
	}
	if last != "" {
		return last
	}
	return EmailLocalPart(email)
}

// ResolveUsernameSeed returns the claimed username hint, falling back to the
// local part of the resolved email. Lowercased so the derived handle is
// stable regardless of provider casing.
func (c Claims) ResolveUsernameSeed(email string) string {
	if u := c.username(); u != "" {
		return strings.ToLower(u)
	}
	return strings.ToLower(EmailLocalPart(email))
}

func EmailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
