package config

import (
	"os"
	"regexp"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// expandEnv replaces ${VAR} with the variable's value. Unset variables are left as written.
func expandEnv(value string, lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	return envPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		if v, ok := lookup(name); ok {
			return v
		}
		return match
	})
}

func (c *connectionSchema) expand(lookup func(string) (string, bool)) {
	c.Hostname = expandEnv(c.Hostname, lookup)
	c.Username = expandEnv(c.Username, lookup)
	c.AuthMethod = expandEnv(c.AuthMethod, lookup)
	c.KeyPath = expandEnv(c.KeyPath, lookup)
	c.PassphraseRef = expandEnv(c.PassphraseRef, lookup)
	c.Password = expandEnv(c.Password, lookup)
	c.PasswordRef = expandEnv(c.PasswordRef, lookup)
	c.KnownHosts = expandEnv(c.KnownHosts, lookup)
}
