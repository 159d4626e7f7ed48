package core

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found with a client-supplied value.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Validate checks the fields the generation prompts depend on.
func (p IntakePayload) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(p.Industry) == "" {
		verr.add("industry is required")
	}
	if strings.TrimSpace(p.Role) == "" {
		verr.add("role is required")
	}
	if !p.Agent().IsKnown() {
		verr.add("unknown selectedAgent %q", p.SelectedAgent)
	}

	if len(p.EnergyDrains) > 3 {
		verr.add("energyDrains accepts at most 3 entries, got %d", len(p.EnergyDrains))
	}
	if len(p.CrisisResponse) != 0 && len(p.CrisisResponse) != 5 {
		verr.add("crisisResponse must rank exactly 5 entries, got %d", len(p.CrisisResponse))
	}
	if len(p.PushbackFeeling) > 3 {
		verr.add("pushbackFeeling accepts at most 3 entries, got %d", len(p.PushbackFeeling))
	}
	if len(p.LeaderFuel) > 6 {
		verr.add("leaderFuel accepts at most 6 entries, got %d", len(p.LeaderFuel))
	}

	checkScale(verr, "behaviorDichotomies", p.BehaviorDichotomies, BehaviorScaleLength)
	checkScale(verr, "societalResponses", p.SocietalResponses, SocietalScaleLength)

	return verr.orNil()
}

func checkScale(verr *ValidationError, name string, values []int, want int) {
	if len(values) == 0 {
		return
	}
	if len(values) != want {
		verr.add("%s must have %d values, got %d", name, want, len(values))
		return
	}
	for i, v := range values {
		if v < MinRating || v > MaxRating {
			verr.add("%s[%d] must be between %d and %d, got %d", name, i, MinRating, MaxRating, v)
		}
	}
}

// Validate checks a rating submission against the campaign it targets.
func (r RatingResponse) Validate(c Campaign) error {
	verr := &ValidationError{}
	if len(r.Ratings) == 0 {
		verr.add("at least one rating is required")
	}
	for i, rating := range r.Ratings {
		if rating.TraitIndex < 0 || rating.TraitIndex >= len(c.Traits) {
			verr.add("ratings[%d]: trait index %d out of range", i, rating.TraitIndex)
			continue
		}
		if rating.StatementIndex < 0 || rating.StatementIndex >= len(c.Traits[rating.TraitIndex].Statements) {
			verr.add("ratings[%d]: statement index %d out of range", i, rating.StatementIndex)
		}
		if rating.Effort < MinRating || rating.Effort > MaxRating {
			verr.add("ratings[%d]: effort must be between %d and %d", i, MinRating, MaxRating)
		}
		if rating.Efficacy < MinRating || rating.Efficacy > MaxRating {
			verr.add("ratings[%d]: efficacy must be between %d and %d", i, MinRating, MaxRating)
		}
	}
	return verr.orNil()
}
