package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// defaultPolicy allows the inline markup authors use in descriptions and
// landing text. Scripts, styles, and event handlers are stripped.
func defaultPolicy() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		contentPolicy = policy
	})
	return contentPolicy
}

func sanitize(policy *bluemonday.Policy, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(trimmed))
}
