package core

import "time"

// Narrative section names, in the fixed order the summary is rendered.
const (
	SectionSnapshot      = "snapshot"
	SectionStrength      = "strength"
	SectionBlindSpots    = "blindSpots"
	SectionGrowthSpark   = "growthSpark"
	SectionSocietalNorms = "societalNorms"
)

// SectionOrder lists the narrative sections in render order.
var SectionOrder = []string{
	SectionSnapshot,
	SectionStrength,
	SectionBlindSpots,
	SectionGrowthSpark,
	SectionSocietalNorms,
}

// NarrativeSectionCount is the number of sections every NarrativeSummary carries.
const NarrativeSectionCount = 5

// MarkersLeadPhrase is the sentence the "markers" section of a trail map must open with.
const MarkersLeadPhrase = "Here are the markers your team is most likely to notice on the trail."

// Campaign shape
const (
	CampaignTraitCount  = 5
	StatementsPerTrait  = 3
	MinRating           = 1
	MaxRating           = 10
	BehaviorScaleLength = 5
	SocietalScaleLength = 10
)

// AgentProfile identifies the tone/persona used when talking to the LLM.
type AgentProfile string

const (
	AgentBluntPracticalFriend   AgentProfile = "bluntPracticalFriend"
	AgentFormalEmpatheticCoach  AgentProfile = "formalEmpatheticCoach"
	AgentBalancedMentor         AgentProfile = "balancedMentor"
	AgentComedyRoaster          AgentProfile = "comedyRoaster"
	AgentPragmaticProblemSolver AgentProfile = "pragmaticProblemSolver"
	AgentHighSchoolCoach        AgentProfile = "highSchoolCoach"
)

// DefaultAgent is used when an intake does not select one.
const DefaultAgent = AgentBalancedMentor

// Agents lists every supported agent profile.
var Agents = []AgentProfile{
	AgentBluntPracticalFriend,
	AgentFormalEmpatheticCoach,
	AgentBalancedMentor,
	AgentComedyRoaster,
	AgentPragmaticProblemSolver,
	AgentHighSchoolCoach,
}

// IsKnown reports whether a is one of the enumerated agent profiles.
func (a AgentProfile) IsKnown() bool {
	for _, known := range Agents {
		if a == known {
			return true
		}
	}
	return false
}

// IntakePayload is a leader's self-reported intake answers. It is read-only once submitted.
type IntakePayload struct {
	Industry             string   `json:"industry" bson:"industry"`
	Role                 string   `json:"role" bson:"role"`
	Responsibilities     string   `json:"responsibilities" bson:"responsibilities"`
	BirthYear            string   `json:"birthYear" bson:"birthYear"`
	TeamSize             string   `json:"teamSize" bson:"teamSize"`
	LeadershipExperience string   `json:"leadershipExperience" bson:"leadershipExperience"`
	CareerExperience     string   `json:"careerExperience" bson:"careerExperience"`
	SelectedAgent        string   `json:"selectedAgent" bson:"selectedAgent"`
	WarningLabel         string   `json:"warningLabel" bson:"warningLabel"`
	RoleModelTrait       string   `json:"roleModelTrait" bson:"roleModelTrait"`
	ProudMoment          string   `json:"proudMoment" bson:"proudMoment"`
	VisibilityComfort    string   `json:"visibilityComfort" bson:"visibilityComfort"`
	DecisionPace         string   `json:"decisionPace" bson:"decisionPace"`
	TeamPerception       string   `json:"teamPerception" bson:"teamPerception"`
	EnergyDrains         []string `json:"energyDrains" bson:"energyDrains"`                 // up to 3
	CrisisResponse       []string `json:"crisisResponse" bson:"crisisResponse"`             // ranked, 5
	PushbackFeeling      []string `json:"pushbackFeeling" bson:"pushbackFeeling"`           // up to 3
	LeaderFuel           []string `json:"leaderFuel" bson:"leaderFuel"`                     // ranked, up to 6
	BehaviorDichotomies  []int    `json:"behaviorDichotomies" bson:"behaviorDichotomies"`   // 5 values, 1-10
	SocietalResponses    []int    `json:"societalResponses" bson:"societalResponses"`       // 10 values, 1-10
}

// Agent returns the selected agent profile, falling back to DefaultAgent when unset.
func (p IntakePayload) Agent() AgentProfile {
	if p.SelectedAgent == "" {
		return DefaultAgent
	}
	return AgentProfile(p.SelectedAgent)
}

// SectionBudget maps a narrative section name to its character limit.
type SectionBudget map[string]int

// Total returns the sum of every section limit.
func (b SectionBudget) Total() int {
	sum := 0
	for _, v := range b {
		sum += v
	}
	return sum
}

// NarrativeSummary is the clipped, five-section narrative returned to the report layer.
type NarrativeSummary struct {
	ID            string        `json:"id" bson:"summaryId"`
	LeaderID      string        `json:"leaderId,omitempty" bson:"leaderId"`
	Sections      []string      `json:"sections" bson:"sections"` // always NarrativeSectionCount entries
	Budgets       SectionBudget `json:"budgets" bson:"budgets"`
	TotalChars    int           `json:"totalChars" bson:"totalChars"`
	Agent         AgentProfile  `json:"agent" bson:"agent"`
	ModelUsed     string        `json:"modelUsed" bson:"modelUsed"`
	DateGenerated time.Time     `json:"dateGenerated" bson:"dateGenerated"`
}

// Text joins the sections with blank lines, the shape the LLM produced them in.
func (s NarrativeSummary) Text() string {
	out := ""
	for i, section := range s.Sections {
		if i > 0 {
			out += "\n\n"
		}
		out += section
	}
	return out
}

// Trait is one focus area of a continuous improvement campaign.
type Trait struct {
	Name       string   `json:"trait" bson:"trait"`
	Statements []string `json:"statements" bson:"statements"`
}

// Campaign is the ordered set of traits a leader's team rates.
type Campaign struct {
	ID          string       `json:"id" bson:"campaignId"`
	LeaderID    string       `json:"leaderId" bson:"leaderId"`
	Traits      []Trait      `json:"traits" bson:"traits"`
	Agent       AgentProfile `json:"agent" bson:"agent"`
	ModelUsed   string       `json:"modelUsed" bson:"modelUsed"`
	DateCreated time.Time    `json:"dateCreated" bson:"dateCreated"`
	DateUpdated time.Time    `json:"dateUpdated" bson:"dateUpdated"`
}

// StatementRating is one team member's dual-axis rating of a single statement.
type StatementRating struct {
	TraitIndex     int `json:"traitIndex" bson:"traitIndex"`
	StatementIndex int `json:"statementIndex" bson:"statementIndex"`
	Effort         int `json:"effort" bson:"effort"`     // 1-10
	Efficacy       int `json:"efficacy" bson:"efficacy"` // 1-10
}

// RatingResponse is a full survey submission from one team member.
type RatingResponse struct {
	ID            string            `json:"id" bson:"responseId"`
	CampaignID    string            `json:"campaignId" bson:"campaignId"`
	Ratings       []StatementRating `json:"ratings" bson:"ratings"`
	DateSubmitted time.Time         `json:"dateSubmitted" bson:"dateSubmitted"`
}
