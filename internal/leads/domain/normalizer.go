package domain

import "strings"

// Normalize classifies candidates with the built-in catalog.
func Normalize(candidates []string, tenantSlug string) LeadStage {
	return defaultCatalog.Normalize(candidates, tenantSlug)
}

// Normalize maps an ordered list of raw tag candidates to a stage.
//
// Each candidate is first checked against the canonical identifiers and the
// alias table; the first hit wins. Otherwise the first non-blank candidate
// is matched against the tenant rules, then the generic rules. Blank input
// yields StageNewLead.
func (c *Catalog) Normalize(candidates []string, tenantSlug string) LeadStage {
	heuristic := ""
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if IsKnownStage(candidate) {
			return LeadStage(candidate)
		}
		if stage, ok := c.Alias(candidate); ok {
			return stage
		}
		if heuristic == "" {
			heuristic = candidate
		}
	}
	if heuristic == "" {
		return StageNewLead
	}

	folded := Fold(heuristic)
	if p, ok := c.Profile(tenantSlug); ok {
		if stage, ok := matchRules(p.Rules, folded); ok {
			return stage
		}
	}
	if stage, ok := matchRules(c.genericRules, folded); ok {
		return stage
	}
	return StageNewLead
}

func matchRules(rules []Rule, folded string) (LeadStage, bool) {
	for _, rule := range rules {
		if rule.matches(folded) {
			return rule.Stage, true
		}
	}
	return "", false
}
