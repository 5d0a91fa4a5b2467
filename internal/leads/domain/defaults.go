package domain

var defaultAliases = map[string]LeadStage{
	"novo_lead": StageNewLead,
	"novo lead": StageNewLead,
	"novo-lead": StageNewLead,
	"t1":        StageNewLead,

	"qualificacao": StageQualifying,
	"qualificação": StageQualifying,
	"qualificando": StageQualifying,
	"t2":           StageQualifying,

	"qualificados":   StageQualified,
	"qualificado":    StageQualified,
	"qualificado(a)": StageQualified,
	"t3":             StageQualified,

	"followup":  StageFollowup,
	"follow-up": StageFollowup,
	"t4":        StageFollowup,

	"descartados":       StageDiscarded,
	"desqualificado":    StageDiscarded,
	"desqualificado(a)": StageDiscarded,
	"t5":                StageDiscarded,
}

// Rules are tested in order. A heuristic tag such as "lead desqualificado"
// contains "qualificado" and resolves to qualified; only the exact aliases
// above map to discarded.
var defaultGenericRules = []Rule{
	{Stage: StageQualified, Keywords: []string{"qualificado"}},
	{Stage: StageFollowup, Keywords: []string{"follow"}},
	{Stage: StageDiscarded, Keywords: []string{"desqual"}},
	{Stage: StageQualifying, Keywords: []string{"qualific"}},
}

var defaultBaseLabels = map[LeadStage]StageLabel{
	StageNewLead:    {Title: "Novo Lead", Description: "Leads recém captados pelo funil"},
	StageQualifying: {Title: "Qualificando", Description: "Leads em processo de qualificação"},
	StageQualified:  {Title: "Qualificados", Description: "Leads prontos para conversão"},
	StageDiscarded:  {Title: "Desqualificados", Description: "Leads desqualificados ou perdidos"},
	StageFollowup:   {Title: "Follow-up", Description: "Leads em acompanhamento ativo"},
}

var defaultProfiles = []Profile{
	{
		Name:  "sieg",
		Slugs: []string{"sieg", "sieg-pre-vendas"},
		Rules: []Rule{
			{Stage: StageQualified, Keywords: []string{"t3", "pago"}},
			{Stage: StageFollowup, Keywords: []string{"t4", "transfer"}},
			{Stage: StageDiscarded, Keywords: []string{"t5", "desqual"}},
			{Stage: StageQualifying, Keywords: []string{"t2", "respond"}},
		},
		Labels: map[LeadStage]StageLabel{
			StageNewLead:    {Title: "T1 - Sem Resposta", Description: "Leads sem resposta inicial"},
			StageQualifying: {Title: "T2 - Respondido", Description: "Leads que responderam à IA"},
			StageQualified:  {Title: "T3 - Pago IA", Description: "Leads que pagaram via IA"},
			StageFollowup:   {Title: "T4 - Transferido", Description: "Leads transferidos para atendimento humano"},
			StageDiscarded:  {Title: "T5 - Passível de Suspensão", Description: "Leads desqualificados ou a suspender"},
		},
		HideDiscarded: true,
	},
	{
		Name:  "asf",
		Slugs: []string{"asf"},
		Rules: []Rule{
			{Stage: StageQualified, Keywords: []string{"t3", "qualificado"}},
			{Stage: StageDiscarded, Keywords: []string{"t5", "desqual"}},
			{Stage: StageQualifying, Keywords: []string{"t2", "qualificando"}},
		},
		Labels: map[LeadStage]StageLabel{
			StageNewLead:    {Title: "T1 - Novo Lead", Description: "Leads recém captados pelo funil"},
			StageQualifying: {Title: "T2 - Qualificando", Description: "Leads em processo de qualificação"},
			StageQualified:  {Title: "T3 - Qualificado", Description: "Leads prontos para conversão"},
			StageFollowup:   {Title: "Follow-up", Description: "Leads em acompanhamento ativo"},
			StageDiscarded:  {Title: "T5 - Desqualificados", Description: "Leads desqualificados ou perdidos"},
		},
	},
}

var defaultCatalog = mustBuildDefaultCatalog()

func mustBuildDefaultCatalog() *Catalog {
	c := newCatalog()
	for alias, stage := range defaultAliases {
		if err := c.addAlias(alias, stage); err != nil {
			panic(err)
		}
	}
	rules, err := compileRules(defaultGenericRules)
	if err != nil {
		panic(err)
	}
	c.genericRules = rules
	for stage, label := range defaultBaseLabels {
		c.baseLabels[stage] = label
	}
	for _, p := range defaultProfiles {
		if err := c.addProfile(p); err != nil {
			panic(err)
		}
	}
	return c
}

// DefaultCatalog returns the built-in rule set.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
