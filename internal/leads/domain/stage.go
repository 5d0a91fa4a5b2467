// Package domain provides core business rules for the leads bounded context:
// funnel stages, tag classification, label sets and amount parsing.
package domain

// LeadStage is one of the five fixed funnel positions a lead can occupy.
type LeadStage string

const (
	StageNewLead    LeadStage = "new_lead"
	StageQualifying LeadStage = "qualifying"
	StageQualified  LeadStage = "qualified"
	StageFollowup   LeadStage = "followup"
	StageDiscarded  LeadStage = "discarded"
)

var funnelOrder = []LeadStage{
	StageNewLead,
	StageQualifying,
	StageQualified,
	StageFollowup,
	StageDiscarded,
}

var knownStages = map[LeadStage]struct{}{
	StageNewLead:    {},
	StageQualifying: {},
	StageQualified:  {},
	StageFollowup:   {},
	StageDiscarded:  {},
}

// Stages returns every stage in funnel order. The slice is a fresh copy.
func Stages() []LeadStage {
	out := make([]LeadStage, len(funnelOrder))
	copy(out, funnelOrder)
	return out
}

// IsKnownStage reports whether value is a canonical stage identifier.
// The comparison is case-sensitive.
func IsKnownStage(value string) bool {
	_, ok := knownStages[LeadStage(value)]
	return ok
}

func (s LeadStage) Valid() bool {
	_, ok := knownStages[s]
	return ok
}

func (s LeadStage) String() string { return string(s) }

// stageRank orders stages by how far a lead progressed. Used to pick the
// representative row when several rows describe the same company.
var stageRank = map[LeadStage]int{
	StageQualified:  5,
	StageFollowup:   4,
	StageQualifying: 3,
	StageNewLead:    2,
	StageDiscarded:  1,
}

// Rank returns the progression rank of s; unknown stages rank 0.
func (s LeadStage) Rank() int {
	return stageRank[s]
}
