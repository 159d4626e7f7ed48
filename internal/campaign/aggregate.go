package campaign

import (
	"math"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// StatementResult is the averaged rating of one statement.
type StatementResult struct {
	StatementIndex int     `json:"statementIndex"`
	Statement      string  `json:"statement"`
	Responses      int     `json:"responses"`
	AvgEffort      float64 `json:"avgEffort"`
	AvgEfficacy    float64 `json:"avgEfficacy"`
}

// TraitResult is the averaged rating of one trait across its statements.
type TraitResult struct {
	TraitIndex  int               `json:"traitIndex"`
	Trait       string            `json:"trait"`
	Responses   int               `json:"responses"`
	AvgEffort   float64           `json:"avgEffort"`
	AvgEfficacy float64           `json:"avgEfficacy"`
	Statements  []StatementResult `json:"statements"`
}

// Results summarizes every rating response for a campaign.
type Results struct {
	CampaignID  string        `json:"campaignId"`
	Respondents int           `json:"respondents"`
	Traits      []TraitResult `json:"traits"`
}

type axisSum struct {
	n        int
	effort   int
	efficacy int
}

func (a *axisSum) add(r core.StatementRating) {
	a.n++
	a.effort += r.Effort
	a.efficacy += r.Efficacy
}

func (a axisSum) means() (float64, float64) {
	if a.n == 0 {
		return 0, 0
	}
	return round2(float64(a.effort) / float64(a.n)), round2(float64(a.efficacy) / float64(a.n))
}

// Aggregate averages effort and efficacy per statement and per trait. Every
// response is validated against c first; an invalid response fails the whole
// aggregation.
func Aggregate(c core.Campaign, responses []core.RatingResponse) (Results, error) {
	for _, r := range responses {
		if err := r.Validate(c); err != nil {
			return Results{}, err
		}
	}

	perStatement := make([][]axisSum, len(c.Traits))
	perTrait := make([]axisSum, len(c.Traits))
	for i, t := range c.Traits {
		perStatement[i] = make([]axisSum, len(t.Statements))
	}

	for _, r := range responses {
		for _, rating := range r.Ratings {
			perStatement[rating.TraitIndex][rating.StatementIndex].add(rating)
			perTrait[rating.TraitIndex].add(rating)
		}
	}

	results := Results{
		CampaignID:  c.ID,
		Respondents: len(responses),
		Traits:      make([]TraitResult, len(c.Traits)),
	}
	for i, t := range c.Traits {
		effort, efficacy := perTrait[i].means()
		tr := TraitResult{
			TraitIndex:  i,
			Trait:       t.Name,
			Responses:   perTrait[i].n,
			AvgEffort:   effort,
			AvgEfficacy: efficacy,
			Statements:  make([]StatementResult, len(t.Statements)),
		}
		for j, s := range t.Statements {
			se, sf := perStatement[i][j].means()
			tr.Statements[j] = StatementResult{
				StatementIndex: j,
				Statement:      s,
				Responses:      perStatement[i][j].n,
				AvgEffort:      se,
				AvgEfficacy:    sf,
			}
		}
		results.Traits[i] = tr
	}
	return results, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
