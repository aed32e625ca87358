package ratelimit

import "time"

// LimitConfig allows at most Max requests per client within Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps each scope to the limits that apply to it.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy protects the GitHub API quota: writes each cost one or two
// API calls and reads at least one.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 300, time.Minute).
		AddLimit(ScopeRead, 120, time.Minute).
		AddLimit(ScopeWrite, 20, time.Minute).
		AddLimit(ScopeWrite, 200, time.Hour).
		Build()
}

// PolicyBuilder assembles a Policy one limit at a time.
type PolicyBuilder struct {
	limits map[Scope][]LimitConfig
}

// NewPolicyBuilder creates an empty builder.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{limits: make(map[Scope][]LimitConfig)}
}

// AddLimit appends a limit of max requests per window to scope.
func (b *PolicyBuilder) AddLimit(scope Scope, maxRequests int64, window time.Duration) *PolicyBuilder {
	b.limits[scope] = append(b.limits[scope], LimitConfig{Window: window, Max: maxRequests})

	return b
}

// Build returns the assembled policy.
func (b *PolicyBuilder) Build() *Policy {
	return &Policy{Limits: b.limits}
}

// LongestWindow returns the largest window of any limit in the policy.
func (p *Policy) LongestWindow() time.Duration {
	var longest time.Duration

	for _, limits := range p.Limits {
		for _, limit := range limits {
			longest = max(longest, limit.Window)
		}
	}

	return longest
}
