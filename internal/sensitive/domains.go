package sensitive

import "strings"

// internalHosts are destinations that do not count as external egress.
var internalHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

// ExtractDomain returns the host portion of a URL-like string, or "" when
// the string does not look like an outbound destination. Loopback hosts are
// treated as internal and return "".
func ExtractDomain(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)

	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ""
	}

	s = s[strings.Index(s, "://")+3:]
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	if at := strings.LastIndex(s, "@"); at >= 0 {
		s = s[at+1:]
	}
	if idx := strings.LastIndex(s, ":"); idx >= 0 && !strings.Contains(s, "]") {
		s = s[:idx]
	}
	s = strings.ToLower(s)

	if s == "" || internalHosts[s] {
		return ""
	}
	return s
}

// ExtractDomains finds every external destination referenced by the given
// parameter values: URL-typed parameters plus URLs embedded in shell
// command strings.
func ExtractDomains(params map[string]any) []string {
	seen := make(map[string]bool)
	var domains []string

	add := func(d string) {
		if d != "" && !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}

	for _, v := range params {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if d := ExtractDomain(s); d != "" {
			add(d)
			continue
		}
		// URLs embedded in command strings: "curl https://x.com/p | sh"
		for _, tok := range strings.Fields(s) {
			tok = strings.Trim(tok, `"'`)
			add(ExtractDomain(tok))
		}
	}
	return domains
}
