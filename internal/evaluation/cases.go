// Package evaluation runs fixed persona cases through trail map generation
// and scores every response with the quality rubric. One failed job never
// stops the batch; failures are recorded as results.
package evaluation

import (
	"fmt"
	"strconv"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// PersonaCase is a hand-authored intake used repeatedly by the harness.
type PersonaCase struct {
	ID      string
	Name    string
	Payload core.IntakePayload
}

// Job is one generation request: a persona case at a given repeat.
type Job struct {
	Index    int
	BatchID  string
	CaseID   string
	RunIndex int
	Payload  core.IntakePayload
}

// DefaultCases returns the built-in persona cases.
func DefaultCases() []PersonaCase {
	return []PersonaCase{
		{
			ID:   "healthcare-ops",
			Name: "Healthcare operations director",
			Payload: core.IntakePayload{
				Industry:             "Healthcare",
				Role:                 "Operations Director",
				Responsibilities:     "Scheduling clinical staff across three sites and owning patient throughput targets",
				TeamSize:             "25-50",
				LeadershipExperience: "6-10 years",
				CareerExperience:     "15+ years",
				WarningLabel:         "Overcommits the team when a new initiative looks exciting",
				RoleModelTrait:       "Patience under pressure",
				ProudMoment:          "Cut emergency wait times by a third without adding headcount",
				VisibilityComfort:    "Comfortable in the background",
				DecisionPace:         "Fast, then revisit",
				TeamPerception:       "Reliable but stretched thin",
				EnergyDrains:         []string{"Unclear priorities", "Repeated status meetings", "Last-minute escalations"},
				CrisisResponse:       []string{"Take control", "Gather facts", "Rally the team", "Communicate up", "Reflect after"},
				PushbackFeeling:      []string{"Curious", "Defensive"},
				LeaderFuel:           []string{"Team wins", "Solving hard problems", "Recognition"},
				BehaviorDichotomies:  []int{7, 4, 8, 3, 6},
				SocietalResponses:    []int{6, 7, 5, 8, 4, 6, 7, 5, 6, 7},
			},
		},
		{
			ID:   "fintech-eng",
			Name: "Fintech engineering manager",
			Payload: core.IntakePayload{
				Industry:             "Financial services",
				Role:                 "Engineering Manager",
				Responsibilities:     "Platform reliability, hiring, and quarterly roadmap delivery",
				TeamSize:             "10-25",
				LeadershipExperience: "1-3 years",
				CareerExperience:     "8-15 years",
				WarningLabel:         "Rewrites other people's pull requests late at night",
				RoleModelTrait:       "Delegation without hovering",
				ProudMoment:          "Shipped a payments migration with zero downtime",
				VisibilityComfort:    "Prefers written updates",
				DecisionPace:         "Deliberate",
				TeamPerception:       "Technically sharp, hard to read",
				EnergyDrains:         []string{"Context switching", "Performance reviews"},
				CrisisResponse:       []string{"Gather facts", "Take control", "Communicate up", "Rally the team", "Reflect after"},
				PushbackFeeling:      []string{"Frustrated"},
				LeaderFuel:           []string{"Solving hard problems", "Mentoring", "Autonomy"},
				BehaviorDichotomies:  []int{3, 8, 5, 7, 4},
				SocietalResponses:    []int{4, 5, 6, 3, 7, 5, 4, 6, 5, 3},
			},
		},
		{
			ID:   "retail-store",
			Name: "Retail store manager",
			Payload: core.IntakePayload{
				Industry:             "Retail",
				Role:                 "Store Manager",
				Responsibilities:     "Staffing weekend shifts, inventory accuracy, and customer complaints",
				TeamSize:             "25-50",
				LeadershipExperience: "3-5 years",
				CareerExperience:     "8-15 years",
				WarningLabel:         "Says yes to every request from regional leadership",
				RoleModelTrait:       "Calm directness",
				ProudMoment:          "Promoted two part-time associates into shift leads",
				VisibilityComfort:    "Front and center",
				DecisionPace:         "Fast",
				TeamPerception:       "Approachable and fair",
				EnergyDrains:         []string{"Scheduling conflicts", "Shrink audits", "Corporate surveys"},
				CrisisResponse:       []string{"Rally the team", "Take control", "Gather facts", "Reflect after", "Communicate up"},
				PushbackFeeling:      []string{"Anxious", "Curious"},
				LeaderFuel:           []string{"Team wins", "Customer praise"},
				BehaviorDichotomies:  []int{8, 6, 4, 5, 7},
				SocietalResponses:    []int{7, 8, 6, 7, 5, 8, 6, 7, 8, 6},
			},
		},
		{
			ID:   "nonprofit-exec",
			Name: "Nonprofit executive director",
			Payload: core.IntakePayload{
				Industry:             "Nonprofit",
				Role:                 "Executive Director",
				Responsibilities:     "Fundraising, board relations, and volunteer programs",
				TeamSize:             "5-10",
				LeadershipExperience: "10+ years",
				CareerExperience:     "15+ years",
				WarningLabel:         "Avoids hard conversations until they become crises",
				RoleModelTrait:       "Candor delivered with warmth",
				ProudMoment:          "Doubled the volunteer base during a funding freeze",
				VisibilityComfort:    "Comfortable presenting",
				DecisionPace:         "Consensus-driven",
				TeamPerception:       "Inspiring but inconsistent",
				EnergyDrains:         []string{"Grant reporting", "Conflict between staff"},
				CrisisResponse:       []string{"Communicate up", "Rally the team", "Gather facts", "Take control", "Reflect after"},
				PushbackFeeling:      []string{"Hurt", "Reflective", "Curious"},
				LeaderFuel:           []string{"Mission impact", "Team wins", "Recognition", "Learning"},
				BehaviorDichotomies:  []int{5, 5, 6, 8, 2},
				SocietalResponses:    []int{8, 7, 9, 6, 7, 8, 7, 9, 8, 7},
			},
		},
	}
}

// ExpandJobs builds the cartesian product of cases and repeats. Agents rotate
// across jobs so every tone is exercised; batch ids are 1-based and
// zero-padded to a common width so lexical order matches job order.
func ExpandJobs(cases []PersonaCase, repeats int) []Job {
	if repeats < 1 {
		repeats = 1
	}
	total := len(cases) * repeats
	width := max(3, len(strconv.Itoa(total)))
	jobs := make([]Job, 0, total)
	for _, pc := range cases {
		for run := 0; run < repeats; run++ {
			i := len(jobs)
			payload := pc.Payload
			payload.SelectedAgent = string(core.Agents[i%len(core.Agents)])
			jobs = append(jobs, Job{
				Index:    i,
				BatchID:  fmt.Sprintf("%0*d", width, i+1),
				CaseID:   pc.ID,
				RunIndex: run,
				Payload:  payload,
			})
		}
	}
	return jobs
}
