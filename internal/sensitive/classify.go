// Package sensitive classifies filesystem paths against the fixed 8-category
// credential/secret taxonomy and extracts outbound destinations from tool
// parameters.
package sensitive

import (
	"strings"

	"github.com/openguardrails/agentwatch/internal/model"
)

// pathRule defines substring-based detection for one taxonomy category.
// Deterministic pattern matching, evaluated in declaration order.
type pathRule struct {
	Category model.SensitiveCategory
	Patterns []string
	Suffixes []string
}

// pathRules is the taxonomy detection table. The 8 category tags are a
// fixed wire contract; the patterns under each tag are tunable.
var pathRules = []pathRule{
	{
		Category: model.CategorySSHKey,
		Patterns: []string{".ssh/", "id_rsa", "id_ed25519", "id_ecdsa", "id_dsa", "authorized_keys"},
	},
	{
		Category: model.CategoryAWSCreds,
		Patterns: []string{".aws/credentials", ".aws/config", ".aws/sso/"},
	},
	{
		Category: model.CategoryGPGKey,
		Patterns: []string{".gnupg/", "secring.gpg", "private-keys-v1.d"},
	},
	{
		Category: model.CategoryEnvFile,
		Patterns: []string{".envrc"},
		Suffixes: []string{".env", ".env.local", ".env.production", ".env.development"},
	},
	{
		Category: model.CategoryCryptoCert,
		Suffixes: []string{".pem", ".key", ".p12", ".pfx", ".jks", ".keystore"},
	},
	{
		Category: model.CategorySystemAuth,
		Patterns: []string{"/etc/shadow", "/etc/passwd", "/etc/sudoers", "/etc/security/", "/etc/pam.d/"},
	},
	{
		Category: model.CategoryBrowserCookie,
		Patterns: []string{
			"cookies.sqlite", "/cookies", "login data",
			"/google/chrome/", "/chromium/", ".mozilla/firefox",
		},
	},
	{
		Category: model.CategoryKeychain,
		Patterns: []string{
			".keychain", "login.keychain-db", "/keychains/",
			".local/share/keyrings", "kwalletd",
		},
	},
}

// ClassifyPath returns the taxonomy category for a filesystem path, or
// ("", false) when the path is not sensitive. Matching is case-insensitive.
func ClassifyPath(path string) (model.SensitiveCategory, bool) {
	p := strings.ToLower(strings.TrimSpace(path))
	if p == "" {
		return "", false
	}

	for _, rule := range pathRules {
		for _, pat := range rule.Patterns {
			if strings.Contains(p, pat) {
				return rule.Category, true
			}
		}
		for _, suf := range rule.Suffixes {
			if strings.HasSuffix(p, suf) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// ClassifyParams scans path-like parameter values and returns every
// taxonomy category they touch. Shell command parameters are tokenized so
// that "cat ~/.ssh/id_rsa" classifies the path argument, not the command.
func ClassifyParams(params map[string]any) []model.SensitiveCategory {
	seen := make(map[model.SensitiveCategory]bool)
	var cats []model.SensitiveCategory

	for _, v := range params {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, tok := range strings.Fields(s) {
			if cat, ok := ClassifyPath(tok); ok && !seen[cat] {
				seen[cat] = true
				cats = append(cats, cat)
			}
		}
	}
	return cats
}
