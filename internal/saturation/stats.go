package saturation

import "sync/atomic"

// Rule identifies an inference rule for statistics.
type Rule int

const (
	RuleInit Rule = iota
	RuleSubsumerPropagation
	RuleConjunctionDecomposition
	RuleConjunctionComposition
	RuleExistentialDecomposition
	RulePropagationGeneration
	RuleExistentialComposition
	RuleChainComposition
	RuleDisjointnessCheck
	RuleBottomPropagation
	RuleEquivalenceMergeTrigger

	NumRules
)

var ruleNames = [NumRules]string{
	"init",
	"subsumer_propagation",
	"conjunction_decomposition",
	"conjunction_composition",
	"existential_decomposition",
	"propagation_generation",
	"existential_composition",
	"chain_composition",
	"disjointness_check",
	"bottom_propagation",
	"equivalence_merge_trigger",
}

func (r Rule) String() string {
	if r < 0 || r >= NumRules {
		return "unknown"
	}
	return ruleNames[r]
}

// RuleCounts holds the number of applications per rule.
type RuleCounts [NumRules]uint64

// Each calls fn for every rule with a non-zero count.
func (c RuleCounts) Each(fn func(name string, n uint64)) {
	for r, n := range c {
		if n > 0 {
			fn(ruleNames[r], n)
		}
	}
}

// Total returns the sum of all rule applications.
func (c RuleCounts) Total() uint64 {
	var total uint64
	for _, n := range c {
		total += n
	}
	return total
}

// Add accumulates other into c.
func (c *RuleCounts) Add(other *RuleCounts) {
	for r := range c {
		c[r] += other[r]
	}
}

type counters [NumRules]atomic.Uint64

func (a *counters) add(c *RuleCounts) {
	for r, n := range c {
		if n > 0 {
			a[r].Add(n)
		}
	}
}

func (a *counters) snapshot() RuleCounts {
	var out RuleCounts
	for r := range a {
		out[r] = a[r].Load()
	}
	return out
}
