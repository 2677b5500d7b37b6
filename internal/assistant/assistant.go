package assistant

import "strings"

// Responder answers planner questions with keyword-matched templates.
// It is a canned helper, not a model: the first matching rule wins.
type Responder struct {
	rules []rule
}

type rule struct {
	keywords []string
	reply    string
}

func NewResponder() *Responder {
	return &Responder{rules: []rule{
		{
			keywords: []string{"match", "pair", "score"},
			reply: "Matches are scored 0-100 from haul distance, soil compatibility, " +
				"volume fit and schedule overlap. Generate suggestions under Matches, " +
				"then approve the pairs you want scheduled.",
		},
		{
			keywords: []string{"schedule", "truck", "assign"},
			reply: "Schedules are generated for approved matches only. Each haul day " +
				"gets a hauler, a truck count and a time window; conflicts and " +
				"unassigned volume are flagged with alerts.",
		},
		{
			keywords: []string{"weather", "rain", "snow", "delay"},
			reply: "Weather risk is estimated per haul date. Winter-month hauls carry " +
				"a delay probability; schedules above the risk threshold get a " +
				"weather alert you can act on by rescheduling.",
		},
		{
			keywords: []string{"alert", "conflict", "risk"},
			reply: "Alerts mark weather risk, long hauls, fleet capacity pressure and " +
				"booking conflicts. High-severity alerts mean the haul day needs a " +
				"planner decision before it can run.",
		},
		{
			keywords: []string{"soil", "contaminat", "material"},
			reply: "Sites pair when their soils match or are known-compatible fills. " +
				"Contaminated exports only pair with imports accepting treated " +
				"material.",
		},
		{
			keywords: []string{"cost", "saving", "carbon", "emission"},
			reply: "Savings compare each match against trucking to a disposal facility " +
				"at the baseline distance. Carbon figures use a per-mile emission " +
				"factor over the same comparison.",
		},
		{
			keywords: []string{"export", "csv", "excel", "pdf", "manifest"},
			reply: "The schedule book exports as an Excel workbook or CSV from the " +
				"Schedules page; each haul day also has a printable PDF manifest " +
				"for the crew.",
		},
	}}
}

func (r *Responder) Respond(message string) string {
	lowered := strings.ToLower(message)
	for _, rule := range r.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.reply
			}
		}
	}
	return "I can help with matches, schedules, alerts, soil compatibility, " +
		"cost and carbon estimates, and exports. Ask about one of those."
}
