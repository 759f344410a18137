package config

import (
	"fmt"
	"strings"
)

const redactedValue = "<redacted>"

var keyDenySegments = map[string]struct{}{
	"BEARER":      {},
	"CREDENTIAL":  {},
	"CREDENTIALS": {},
	"COOKIE":      {},
	"KEY":         {},
	"PASS":        {},
	"PASSWD":      {},
	"PASSWORD":    {},
	"PRIVATE":     {},
	"SECRET":      {},
	"SESSION":     {},
	"TOKEN":       {},
}

// shouldRedactKey reports whether a dotted config key holds a credential.
func shouldRedactKey(key string) bool {
	k := strings.TrimSpace(key)
	if k == "" {
		return false
	}

	upper := strings.ToUpper(k)
	for _, seg := range splitKeySegments(upper) {
		if _, ok := keyDenySegments[seg]; ok {
			return true
		}
	}

	// Non-delimited keys like "apitoken".
	for _, sub := range []string{"TOKEN", "SECRET", "PASSWORD", "PASSWD"} {
		if strings.Contains(upper, sub) {
			return true
		}
	}
	return false
}

func splitKeySegments(keyUpper string) []string {
	return strings.FieldsFunc(keyUpper, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
}

// Entry is one flattened configuration key.
type Entry struct {
	Key   string
	Value string
}

// Entries flattens cfg into dotted keys. Credentials are replaced with
// <redacted> unless reveal is set; empty credentials stay empty.
func Entries(cfg *Config, reveal bool) []Entry {
	raw := []Entry{
		{"controller.url", cfg.Controller.URL},
		{"controller.token", cfg.Controller.Token},
		{"controller.username", cfg.Controller.Username},
		{"controller.password", cfg.Controller.Password},
		{"controller.timeout", cfg.Controller.Timeout.String()},
		{"controller.insecure", fmt.Sprintf("%t", cfg.Controller.Insecure)},
		{"snapshot.file", cfg.Snapshot.File},
		{"cache.ttl", cfg.Cache.TTL.String()},
		{"display.timezone", cfg.Display.Timezone},
		{"display.contact_url", cfg.Display.ContactURL},
		{"log.level", cfg.Log.Level},
		{"log.file", cfg.Log.File},
	}
	if reveal {
		return raw
	}
	out := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.Value != "" && shouldRedactKey(e.Key) {
			e.Value = redactedValue
		}
		out = append(out, e)
	}
	return out
}
