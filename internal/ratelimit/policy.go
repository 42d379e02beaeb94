package ratelimit

// Tier is a subscription level. Users without a live subscription resolve
// to TierFree.
type Tier string

const (
	TierFree  Tier = "free"
	TierBasic Tier = "basic"
	TierPro   Tier = "pro"
	TierElite Tier = "elite"
)

// QuotaPolicy bounds one operation for one tier. A zero limit means the
// corresponding window is not enforced.
type QuotaPolicy struct {
	PerMinute int64 `json:"per_minute"`
	PerDay    int64 `json:"per_day"`
}

// PolicyTable maps (operation, tier) to a QuotaPolicy. Operations with no
// entry are not gated at all. Lookups are pure.
type PolicyTable map[string]map[Tier]QuotaPolicy

// Lookup returns the policy for an operation and tier. ok is false when the
// operation is unknown or has no row for the tier.
func (t PolicyTable) Lookup(operation string, tier Tier) (QuotaPolicy, bool) {
	tiers, ok := t[operation]
	if !ok {
		return QuotaPolicy{}, false
	}
	policy, ok := tiers[tier]
	return policy, ok
}

// Operations lists the gated operation names, for the admin config view.
func (t PolicyTable) Operations() []string {
	ops := make([]string, 0, len(t))
	for op := range t {
		ops = append(ops, op)
	}
	return ops
}

// DefaultPolicies is the shipped quota table for the two expensive
// operations. Overridable from config.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		OpAIAnalysis: {
			TierFree:  {PerMinute: 1, PerDay: 5},
			TierBasic: {PerMinute: 3, PerDay: 30},
			TierPro:   {PerMinute: 6, PerDay: 120},
			TierElite: {PerMinute: 10, PerDay: 500},
		},
		OpFileAnalysis: {
			TierFree:  {PerMinute: 1, PerDay: 2},
			TierBasic: {PerMinute: 2, PerDay: 10},
			TierPro:   {PerMinute: 4, PerDay: 40},
			TierElite: {PerMinute: 6, PerDay: 100},
		},
	}
}

// Gated operation names. Handlers pass these to QuotaService.Enforce.
const (
	OpAIAnalysis   = "ai_analysis"
	OpFileAnalysis = "file_analysis"
)
