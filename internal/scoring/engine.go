// Package scoring turns a provider application into a score, a category
// breakdown, a tier and an auto-approval decision. Scoring is pure: the same
// application always produces the same result.
package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"connect-workers/internal/common/validation"
	"connect-workers/internal/models"
)

// Breakdown holds the per-category sub-scores. Its fields always sum to the score.
type Breakdown struct {
	Experience  int `json:"experience"`
	Expertise   int `json:"expertise"`
	CaseStudies int `json:"caseStudies"`
	Portfolio   int `json:"portfolio"`
	LinkedIn    int `json:"linkedin"`
	Guarantee   int `json:"guarantee"`
}

func (b Breakdown) Total() int {
	return b.Experience + b.Expertise + b.CaseStudies + b.Portfolio + b.LinkedIn + b.Guarantee
}

// Map returns the breakdown keyed by category name.
func (b Breakdown) Map() map[string]int {
	return map[string]int{
		"experience":  b.Experience,
		"expertise":   b.Expertise,
		"caseStudies": b.CaseStudies,
		"portfolio":   b.Portfolio,
		"linkedin":    b.LinkedIn,
		"guarantee":   b.Guarantee,
	}
}

// ApplicationScore is the result of scoring one application.
type ApplicationScore struct {
	Score         int       `json:"score"`
	Breakdown     Breakdown `json:"breakdown"`
	Tier          Tier      `json:"tier"`
	AutoApproved  bool      `json:"autoApproved"`
	Disqualifiers []string  `json:"disqualifiers"`
}

// Engine scores applications against a validated Config.
type Engine struct {
	cfg        Config
	buckets    []ExperienceBucket
	recognized map[string]struct{}
	platform   string
}

// NewEngine validates cfg and prepares lookup tables.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	buckets := append([]ExperienceBucket(nil), cfg.ExperienceBuckets...)
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].MinYears > buckets[j].MinYears })

	recognized := make(map[string]struct{}, len(cfg.RecognizedExpertise))
	for _, area := range cfg.RecognizedExpertise {
		recognized[normalize(area)] = struct{}{}
	}

	return &Engine{
		cfg:        cfg,
		buckets:    buckets,
		recognized: recognized,
		platform:   normalize(cfg.RequiredPlatform),
	}, nil
}

// MustNewEngine panics on an invalid config; for use with DefaultConfig.
func MustNewEngine(cfg Config) *Engine {
	e, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the ApplicationScore. Missing or malformed fields contribute zero.
func (e *Engine) Score(app *models.ProviderApplication) ApplicationScore {
	if app == nil {
		app = &models.ProviderApplication{}
	}

	b := Breakdown{
		Experience:  e.experience(app.YearsEmailMarketing),
		Expertise:   e.expertise(app.ExpertiseAreas),
		CaseStudies: e.caseStudies(app.CaseStudies),
		Portfolio:   e.flatURL(app.PortfolioURL, e.cfg.PortfolioPoints),
		LinkedIn:    e.flatURL(app.LinkedInURL, e.cfg.LinkedInPoints),
		Guarantee:   e.guarantee(app.PerformanceGuarantee),
	}
	score := b.Total()

	disqualifiers := []string{}
	if !e.hasRequiredPlatform(app.Platforms) {
		disqualifiers = append(disqualifiers,
			fmt.Sprintf("%s expertise is required for auto-approval", e.cfg.RequiredPlatform))
	}

	return ApplicationScore{
		Score:         score,
		Breakdown:     b,
		Tier:          e.cfg.TierFor(score),
		AutoApproved:  score >= e.cfg.AutoApproveThreshold && len(disqualifiers) == 0,
		Disqualifiers: disqualifiers,
	}
}

func (e *Engine) experience(bucket string) int {
	years, ok := leadingInt(bucket)
	if !ok {
		return 0
	}
	for _, b := range e.buckets {
		if years >= b.MinYears {
			return clamp(b.Points, 0, e.cfg.ExperienceCap)
		}
	}
	return 0
}

func (e *Engine) expertise(areas []string) int {
	seen := make(map[string]struct{}, len(areas))
	for _, area := range areas {
		key := normalize(area)
		if _, ok := e.recognized[key]; ok {
			seen[key] = struct{}{}
		}
	}
	return clamp(len(seen)*e.cfg.ExpertisePerArea, 0, e.cfg.ExpertiseCap)
}

func (e *Engine) caseStudies(studies []models.CaseStudy) int {
	total := 0
	for _, cs := range studies {
		filled := 0
		for _, field := range []string{cs.Title, cs.Challenge, cs.Solution, cs.Results} {
			if strings.TrimSpace(field) != "" {
				filled++
			}
		}
		total += e.cfg.CaseStudyPoints * filled / 4
	}
	return clamp(total, 0, e.cfg.CaseStudyCap)
}

func (e *Engine) flatURL(raw string, points int) int {
	if validation.IsWellFormedURL(raw) {
		return points
	}
	return 0
}

func (e *Engine) guarantee(answer string) int {
	switch normalize(answer) {
	case models.GuaranteeYes:
		return e.cfg.GuaranteeYes
	case models.GuaranteeConditional:
		return e.cfg.GuaranteeConditional
	default:
		return 0
	}
}

func (e *Engine) hasRequiredPlatform(platforms []string) bool {
	for _, p := range platforms {
		if normalize(p) == e.platform {
			return true
		}
	}
	return false
}

// leadingInt parses the number a bucket label starts with: "5+" is 5, "3-5" is 3.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
