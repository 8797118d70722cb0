package superadmin

import "strings"

// Config lists the operator accounts that bypass tenant boundaries.
type Config struct {
	// Emails of super admins, comma separated in the environment.
	Emails []string `env:"TENANCY_SUPER_ADMINS" envSeparator:","`
}

// Checker answers whether an account is a super admin. Matching is by
// email, case-insensitive, against a fixed configuration list; there is
// no database state to keep in sync.
type Checker struct {
	emails map[string]struct{}
}

// New builds a checker from configuration. Empty entries are dropped.
func New(cfg Config) *Checker {
	emails := make(map[string]struct{}, len(cfg.Emails))
	for _, email := range cfg.Emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			emails[email] = struct{}{}
		}
	}
	return &Checker{emails: emails}
}

// IsSuperAdmin reports whether the email belongs to a configured super
// admin.
func (c *Checker) IsSuperAdmin(email string) bool {
	if email == "" {
		return false
	}
	_, ok := c.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Empty reports whether no super admins are configured.
func (c *Checker) Empty() bool {
	return len(c.emails) == 0
}
