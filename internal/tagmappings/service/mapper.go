package service

import (
	"strings"

	"github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	"github.com/ZionTraffic/zion-flux-sub000/internal/tagmappings/repository"
)

const newLeadLabel = "Novo Lead"

// Mapper answers lookups against one tenant's tag dictionary.
// Tags compare case-insensitively.
type Mapper struct {
	mappings []repository.Mapping
	byTag    map[string]int
	stages   []domain.LeadStage
	resolved []domain.LeadStage
}

// NewMapper indexes mappings, which are expected in display order.
// Entries whose stage the catalog cannot resolve are kept for display but
// never classify a lead.
func NewMapper(mappings []repository.Mapping, catalog *domain.Catalog) *Mapper {
	m := &Mapper{
		mappings: mappings,
		byTag:    make(map[string]int, len(mappings)),
		resolved: make([]domain.LeadStage, len(mappings)),
	}
	seen := make(map[domain.LeadStage]bool)
	for i, mapping := range mappings {
		key := tagKey(mapping.ExternalTag)
		if _, dup := m.byTag[key]; !dup {
			m.byTag[key] = i
		}
		stage, ok := catalog.ResolveStage(mapping.InternalStage)
		if !ok {
			continue
		}
		m.resolved[i] = stage
		if !seen[stage] {
			seen[stage] = true
			m.stages = append(m.stages, stage)
		}
	}
	return m
}

func tagKey(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func (m *Mapper) lookup(tag string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.byTag[tagKey(tag)]
	return i, ok
}

// StageForTag returns the stage configured for tag.
func (m *Mapper) StageForTag(tag string) (domain.LeadStage, bool) {
	i, ok := m.lookup(tag)
	if !ok || m.resolved[i] == "" {
		return "", false
	}
	return m.resolved[i], true
}

// DisplayLabel returns the configured label, or tag itself when unmapped.
func (m *Mapper) DisplayLabel(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return newLeadLabel
	}
	if i, ok := m.lookup(tag); ok {
		return m.mappings[i].DisplayLabel
	}
	return tag
}

// Description returns the configured description of tag.
func (m *Mapper) Description(tag string) (string, bool) {
	i, ok := m.lookup(tag)
	if !ok || m.mappings[i].Description == nil || *m.mappings[i].Description == "" {
		return "", false
	}
	return *m.mappings[i].Description, true
}

// TagsByStage lists the mappings that lead to stage.
func (m *Mapper) TagsByStage(stage domain.LeadStage) []repository.Mapping {
	if m == nil {
		return nil
	}
	var out []repository.Mapping
	for i, mapping := range m.mappings {
		if m.resolved[i] == stage {
			out = append(out, mapping)
		}
	}
	return out
}

// UniqueStages lists the configured stages in display order.
func (m *Mapper) UniqueStages() []domain.LeadStage {
	if m == nil {
		return nil
	}
	return append([]domain.LeadStage(nil), m.stages...)
}

// Mappings returns the dictionary in display order.
func (m *Mapper) Mappings() []repository.Mapping {
	if m == nil {
		return nil
	}
	return append([]repository.Mapping(nil), m.mappings...)
}

// Len reports the number of entries.
func (m *Mapper) Len() int {
	if m == nil {
		return 0
	}
	return len(m.mappings)
}
