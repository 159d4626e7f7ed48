package quality

import (
	"regexp"
	"strings"
)

// Sentiment labels
const (
	SentimentRiskHeavy    = "Risk-heavy"
	SentimentConstructive = "Constructive"
	SentimentBalanced     = "Balanced"
	SentimentNoOutput     = "No output"
)

// RubricScore holds every rubric dimension for one generated trail map, plus
// the reliability discount and the derived totals.
type RubricScore struct {
	Structure        int `json:"structure"`
	Trailhead        int `json:"trailhead"`
	MarkerLead       int `json:"markerLead"`
	MarkerBullets    int `json:"markerBullets"`
	Trajectory       int `json:"trajectory"`
	NewTrail         int `json:"newTrail"`
	NoDirective      int `json:"noDirective"`
	NoBannedPhrase   int `json:"noBannedPhrase"`
	ContextGrounding int `json:"contextGrounding"`

	QualityTotal     int    `json:"qualityTotal"`
	ReliabilityScore int    `json:"reliabilityScore"`
	DeliveryTotal    int    `json:"deliveryTotal"`
	Sentiment        string `json:"sentiment"`
}

// Dimension is a named sub-score with its ceiling.
type Dimension struct {
	Name  string
	Value int
	Max   int
}

// Dimensions lists the rubric dimensions in report order.
func (s RubricScore) Dimensions() []Dimension {
	return []Dimension{
		{"structure", s.Structure, MaxStructure},
		{"trailhead", s.Trailhead, MaxTrailhead},
		{"markerLead", s.MarkerLead, MaxMarkerLead},
		{"markerBullets", s.MarkerBullets, MaxMarkerBullets},
		{"trajectory", s.Trajectory, MaxTrajectoryFirst + MaxTrajectorySecond},
		{"newTrail", s.NewTrail, MaxNewTrail},
		{"noDirective", s.NoDirective, MaxNoDirective},
		{"noBannedPhrase", s.NoBannedPhrase, MaxNoBannedPhrase},
		{"contextGrounding", s.ContextGrounding, MaxContextGrounding},
	}
}

// EmptyScore is the result for a case that produced no text.
func EmptyScore() RubricScore {
	return RubricScore{Sentiment: SentimentNoOutput}
}

// Thresholds below which a case is flagged as a high-risk pattern.
type Thresholds struct {
	MinNoDirective    int
	MinNoBannedPhrase int
}

// DefaultThresholds returns the flagging thresholds used by reports.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinNoDirective:    6,
		MinNoBannedPhrase: 7,
	}
}

// HighRiskFlags names the lexical dimensions of s that fall below t.
// Cases without output are not flagged; they are counted as failures instead.
func HighRiskFlags(s RubricScore, t Thresholds) []string {
	if s.Sentiment == SentimentNoOutput {
		return nil
	}
	var flags []string
	if s.NoDirective < t.MinNoDirective {
		flags = append(flags, "directive language")
	}
	if s.NoBannedPhrase < t.MinNoBannedPhrase {
		flags = append(flags, "banned phrase")
	}
	return flags
}

// Pattern is a named lexical check. When Regex has a capture group, matches
// whose first group is in Except (case-insensitive) are not counted.
type Pattern struct {
	Name   string
	Regex  *regexp.Regexp
	Except map[string]bool
}

// nonGerunds are "-ing" nouns that commonly open a bullet.
var nonGerunds = map[string]bool{
	"anything": true, "ceiling": true, "during": true, "evening": true,
	"everything": true, "morning": true, "nothing": true, "something": true,
	"spring": true, "sterling": true, "string": true, "thing": true,
	"wedding": true,
}

// DirectivePatterns catch prescriptive language the trail map should avoid.
var DirectivePatterns = []Pattern{
	{"you should", regexp.MustCompile(`(?i)\byou should\b`), nil},
	{"need to", regexp.MustCompile(`(?i)\bneeds? to\b`), nil},
	{"must", regexp.MustCompile(`(?i)\bmust\b`), nil},
	{"have to", regexp.MustCompile(`(?i)\b(?:have|has) to\b`), nil},
	{"gerund bullet", regexp.MustCompile(`(?m)^\s*-\s+([A-Z][a-z]+ing)\b`), nonGerunds},
}

// BannedPhrasePatterns catch marketing filler.
var BannedPhrasePatterns = []Pattern{
	{"unlock potential", regexp.MustCompile(`(?i)\bunlock(?:ing)?\s+(?:your\s+|their\s+)?(?:full\s+)?potential\b`), nil},
	{"growth mindset", regexp.MustCompile(`(?i)\bgrowth mindset\b`), nil},
	{"game changer", regexp.MustCompile(`(?i)\bgame[\s-]?changer\b`), nil},
	{"synergy", regexp.MustCompile(`(?i)\bsynerg(?:y|ies|ize)\b`), nil},
	{"level up", regexp.MustCompile(`(?i)\blevel[\s-]up\b`), nil},
	{"next level", regexp.MustCompile(`(?i)\bnext[\s-]level\b`), nil},
}

// CountPatterns counts every occurrence of every pattern in text and lists the
// names of the patterns that matched at least once.
func CountPatterns(text string, patterns []Pattern) (count int, found []string) {
	for _, p := range patterns {
		n := 0
		for _, m := range p.Regex.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && p.Except[strings.ToLower(m[1])] {
				continue
			}
			n++
		}
		if n > 0 {
			count += n
			found = append(found, p.Name)
		}
	}
	return count, found
}

var (
	riskRegex     = regexp.MustCompile(`(?i)\b(?:risk|risks|danger|burnout|collapse|failure|fail|threat|erode|erodes|damage|crisis)\b`)
	hedgeRegex    = regexp.MustCompile(`(?i)\b(?:may|might|could|perhaps|sometimes|often|tends?)\b`)
	momentumRegex = regexp.MustCompile(`(?i)\b(?:momentum|progress|build|builds|strengthen|strengthens|opportunity|energy|forward|grows|gains?)\b`)
)

// ClassifySentiment labels text as Risk-heavy, Constructive or Balanced. The
// checks run in that priority order and the first that applies wins.
func ClassifySentiment(text string) string {
	if strings.TrimSpace(text) == "" {
		return SentimentNoOutput
	}
	if riskRegex.MatchString(text) && !hedgeRegex.MatchString(text) {
		return SentimentRiskHeavy
	}
	if momentumRegex.MatchString(text) {
		return SentimentConstructive
	}
	return SentimentBalanced
}
