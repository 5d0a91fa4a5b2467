package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultConversationTable holds one summary row per lead for most tenants.
const DefaultConversationTable = "conversas_leads"

// financeSheetMarker identifies tenants whose funnel is read from the
// finance spreadsheet table instead of the leads table.
const financeSheetMarker = "financeiro"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// StageLabel is the presentation title and description of a stage.
type StageLabel struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Rule assigns Stage when any keyword is a substring of the folded tag.
type Rule struct {
	Stage    LeadStage `yaml:"stage"`
	Keywords []string  `yaml:"keywords"`
}

func (r Rule) matches(folded string) bool {
	for _, keyword := range r.Keywords {
		if keyword != "" && strings.Contains(folded, keyword) {
			return true
		}
	}
	return false
}

// Profile is the tenant-specific vocabulary: heuristic rules checked
// before the generic ones, label overrides and table selection.
type Profile struct {
	Name              string
	Slugs             []string
	Rules             []Rule
	Labels            map[LeadStage]StageLabel
	ConversationTable string
	// HideDiscarded drops the discarded column from funnel views.
	HideDiscarded bool
}

// Catalog is the read-only rule set used to classify tags. It is built once
// and shared; extending it produces a new Catalog.
type Catalog struct {
	aliases      map[string]LeadStage
	genericRules []Rule
	baseLabels   map[LeadStage]StageLabel
	profiles     map[string]Profile
	bySlug       map[string]string
}

func newCatalog() *Catalog {
	return &Catalog{
		aliases:    make(map[string]LeadStage),
		baseLabels: make(map[LeadStage]StageLabel),
		profiles:   make(map[string]Profile),
		bySlug:     make(map[string]string),
	}
}

func (c *Catalog) clone() *Catalog {
	out := newCatalog()
	for k, v := range c.aliases {
		out.aliases[k] = v
	}
	out.genericRules = append([]Rule(nil), c.genericRules...)
	for k, v := range c.baseLabels {
		out.baseLabels[k] = v
	}
	for k, v := range c.profiles {
		out.profiles[k] = v
	}
	for k, v := range c.bySlug {
		out.bySlug[k] = v
	}
	return out
}

func (c *Catalog) addAlias(alias string, stage LeadStage) error {
	if !stage.Valid() {
		return fmt.Errorf("alias %q: unknown stage %q", alias, stage)
	}
	key := canonical(alias)
	if key == "" {
		return fmt.Errorf("alias for stage %q is empty", stage)
	}
	c.aliases[key] = stage
	c.aliases[Fold(alias)] = stage
	return nil
}

func compileRules(rules []Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		if !rule.Stage.Valid() {
			return nil, fmt.Errorf("rule %d: unknown stage %q", i, rule.Stage)
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if folded := Fold(keyword); folded != "" {
				keywords = append(keywords, folded)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, rule.Stage)
		}
		out = append(out, Rule{Stage: rule.Stage, Keywords: keywords})
	}
	return out, nil
}

func (c *Catalog) addProfile(p Profile) error {
	name := canonical(p.Name)
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	rules, err := compileRules(p.Rules)
	if err != nil {
		return fmt.Errorf("profile %s: %w", name, err)
	}
	for stage := range p.Labels {
		if !stage.Valid() {
			return fmt.Errorf("profile %s: label for unknown stage %q", name, stage)
		}
	}
	if p.ConversationTable != "" && !tableNamePattern.MatchString(p.ConversationTable) {
		return fmt.Errorf("profile %s: invalid conversation table %q", name, p.ConversationTable)
	}

	if previous, ok := c.profiles[name]; ok {
		for _, slug := range previous.Slugs {
			delete(c.bySlug, canonical(slug))
		}
	}

	labels := make(map[LeadStage]StageLabel, len(p.Labels))
	for stage, label := range p.Labels {
		labels[stage] = label
	}
	slugs := p.Slugs
	if len(slugs) == 0 {
		slugs = []string{name}
	}

	c.profiles[name] = Profile{
		Name:              name,
		Slugs:             append([]string(nil), slugs...),
		Rules:             rules,
		Labels:            labels,
		ConversationTable: p.ConversationTable,
		HideDiscarded:     p.HideDiscarded,
	}
	for _, slug := range slugs {
		c.bySlug[canonical(slug)] = name
	}
	return nil
}

// Profile returns the tenant profile registered for slug.
func (c *Catalog) Profile(tenantSlug string) (Profile, bool) {
	name, ok := c.bySlug[canonical(tenantSlug)]
	if !ok {
		return Profile{}, false
	}
	p, ok := c.profiles[name]
	return p, ok
}

// Alias looks value up in the alias table, first as typed (lowercased and
// trimmed) and then accent-folded.
func (c *Catalog) Alias(value string) (LeadStage, bool) {
	if stage, ok := c.aliases[canonical(value)]; ok {
		return stage, true
	}
	stage, ok := c.aliases[Fold(value)]
	return stage, ok
}

// ResolveStage accepts a canonical stage identifier in any case or an alias.
// Tag dictionaries store their target stage this way.
func (c *Catalog) ResolveStage(value string) (LeadStage, bool) {
	if key := canonical(value); IsKnownStage(key) {
		return LeadStage(key), true
	}
	return c.Alias(value)
}

// Labels returns the generic label set merged with the tenant overrides.
// The returned map is owned by the caller.
func (c *Catalog) Labels(tenantSlug string) map[LeadStage]StageLabel {
	out := make(map[LeadStage]StageLabel, len(c.baseLabels))
	for stage, label := range c.baseLabels {
		out[stage] = label
	}
	if p, ok := c.Profile(tenantSlug); ok {
		for stage, label := range p.Labels {
			out[stage] = label
		}
	}
	return out
}

// ConversationTable names the conversation summary table for the tenant.
func (c *Catalog) ConversationTable(tenantSlug string) string {
	if p, ok := c.Profile(tenantSlug); ok && p.ConversationTable != "" {
		return p.ConversationTable
	}
	return DefaultConversationTable
}

// HidesDiscarded reports whether the tenant's funnel omits the discarded column.
func (c *Catalog) HidesDiscarded(tenantSlug string) bool {
	p, ok := c.Profile(tenantSlug)
	return ok && p.HideDiscarded
}

// IsFinanceSheet reports whether the tenant's leads live in the finance
// spreadsheet table.
func IsFinanceSheet(tenantSlug string) bool {
	return strings.Contains(canonical(tenantSlug), financeSheetMarker)
}
