// Package scope decides whether a discount's applicability rules match a selection.
//
// Rules are evaluated in a fixed order and the first failing rule short-circuits.
// Client-type exclusion is evaluated before client-type inclusion, so a client type
// listed in both is rejected.
package scope

import "github.com/Omri-Jukin/Portfolio-sub003/core/types"

// Rule names, in evaluation order
const (
	RuleProjectType         = "project_type"
	RuleFeature             = "feature"
	RuleClientTypeExclusion = "client_type_exclusion"
	RuleClientType          = "client_type"
)

// Rule is one named predicate over scope rules and a selection
type Rule struct {
	Name  string
	Check func(rules types.ScopeRules, sel types.ScopeSelection) bool
}

var orderedRules = []Rule{
	{Name: RuleProjectType, Check: checkProjectType},
	{Name: RuleFeature, Check: checkFeature},
	{Name: RuleClientTypeExclusion, Check: checkClientTypeExclusion},
	{Name: RuleClientType, Check: checkClientType},
}

// Rules returns the rules in evaluation order
func Rules() []Rule {
	out := make([]Rule, len(orderedRules))
	copy(out, orderedRules)
	return out
}

// Match reports whether every rule passes
func Match(rules types.ScopeRules, sel types.ScopeSelection) bool {
	_, ok := Explain(rules, sel)
	return ok
}

// Explain returns the name of the first failing rule, or ok=true when all pass
func Explain(rules types.ScopeRules, sel types.ScopeSelection) (failed string, ok bool) {
	for _, r := range orderedRules {
		if !r.Check(rules, sel) {
			return r.Name, false
		}
	}
	return "", true
}

func checkProjectType(rules types.ScopeRules, sel types.ScopeSelection) bool {
	if len(rules.ProjectTypes) == 0 {
		return true
	}
	return sel.ProjectTypeKey != "" && contains(rules.ProjectTypes, sel.ProjectTypeKey)
}

// Any single overlapping feature is enough.
func checkFeature(rules types.ScopeRules, sel types.ScopeSelection) bool {
	if len(rules.Features) == 0 {
		return true
	}
	for _, key := range sel.SelectedFeatureKeys {
		if contains(rules.Features, key) {
			return true
		}
	}
	return false
}

func checkClientTypeExclusion(rules types.ScopeRules, sel types.ScopeSelection) bool {
	if len(rules.ExcludeClientTypes) == 0 {
		return true
	}
	return !contains(rules.ExcludeClientTypes, sel.ClientTypeKey)
}

func checkClientType(rules types.ScopeRules, sel types.ScopeSelection) bool {
	if len(rules.ClientTypes) == 0 {
		return true
	}
	return sel.ClientTypeKey != "" && contains(rules.ClientTypes, sel.ClientTypeKey)
}

func contains(list []string, key string) bool {
	for _, v := range list {
		if v == key {
			return true
		}
	}
	return false
}
