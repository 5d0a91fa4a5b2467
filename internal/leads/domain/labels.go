package domain

// ResolveLabels returns the label set for the tenant: generic titles with
// the tenant overrides applied. An unknown or empty slug gets the generic set.
func ResolveLabels(tenantSlug string) map[LeadStage]StageLabel {
	return defaultCatalog.Labels(tenantSlug)
}
