package parser

import (
	"errors"
	"fmt"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// ResultKind tags a parse outcome.
type ResultKind int

const (
	// Success means the traits satisfy the requested shape exactly.
	Success ResultKind = iota
	// PartialRecovery means some traits or statements were recovered, but not all.
	PartialRecovery
	// StructuralError means nothing usable was recovered.
	StructuralError
)

func (k ResultKind) String() string {
	switch k {
	case Success:
		return "success"
	case PartialRecovery:
		return "partial_recovery"
	case StructuralError:
		return "structural_error"
	}
	return fmt.Sprintf("ResultKind(%d)", int(k))
}

// Result is the outcome of Parse.
type Result struct {
	Kind         ResultKind
	Traits       []core.Trait
	MissingCount int    // statements short of the requested shape, PartialRecovery only
	Reason       string // StructuralError and PartialRecovery only
}

// Parse tries the strict JSON contract first and falls back to the lenient
// line format. want is the number of traits the caller expects.
func Parse(raw string, want int) Result {
	traits, jsonErr := ParseTraitsJSON(raw, want)
	if jsonErr == nil {
		return Result{Kind: Success, Traits: traits}
	}

	recovered := ParseLineDelimitedTraits(raw)
	if len(recovered) == 0 {
		return Result{Kind: StructuralError, Reason: jsonErr.Error()}
	}

	missing := Missing(recovered, want)
	if missing == 0 && len(recovered) == want && exactShape(recovered) {
		return Result{Kind: Success, Traits: recovered}
	}

	return Result{
		Kind:         PartialRecovery,
		Traits:       recovered,
		MissingCount: missing,
		Reason:       fmt.Sprintf("recovered %d of %d traits", len(recovered), want),
	}
}

// Missing counts statements short of want complete traits. Traits beyond
// want and statements beyond StatementsPerTrait are ignored.
func Missing(traits []core.Trait, want int) int {
	missing := 0
	for i := 0; i < want; i++ {
		if i >= len(traits) {
			missing += core.StatementsPerTrait
			continue
		}
		if n := len(nonEmpty(traits[i].Statements)); n < core.StatementsPerTrait {
			missing += core.StatementsPerTrait - n
		}
	}
	return missing
}

// Strict returns the traits only for Success results.
func (r Result) Strict() ([]core.Trait, error) {
	if r.Kind == Success {
		return r.Traits, nil
	}
	return nil, &ParseError{Reason: r.Reason}
}

// Lenient returns whatever was recovered, failing only on StructuralError.
func (r Result) Lenient() ([]core.Trait, error) {
	if r.Kind == StructuralError {
		return nil, &ParseError{Reason: r.Reason}
	}
	return r.Traits, nil
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

func exactShape(traits []core.Trait) bool {
	for _, t := range traits {
		if t.Name == "" || len(t.Statements) != core.StatementsPerTrait {
			return false
		}
		if len(nonEmpty(t.Statements)) != core.StatementsPerTrait {
			return false
		}
	}
	return true
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
