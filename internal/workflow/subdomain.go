package workflow

import "strings"

// MinSubdomainLen is the minimum length of a normalized subdomain candidate.
const MinSubdomainLen = 3

// NormalizeSubdomain lowercases the candidate and strips every character
// outside [a-z0-9-]. The result is what gets persisted and compared for
// uniqueness, so "Worker-1!!" and "worker-1" claim the same name.
func NormalizeSubdomain(candidate string) string {
	lowered := strings.ToLower(strings.TrimSpace(candidate))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
