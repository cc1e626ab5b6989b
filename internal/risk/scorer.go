// Package risk classifies an account against the minimum-activity rule:
// 60 days of account age, 300 badges, 20 friends and 10 groups.
package risk

import (
	"errors"
	"fmt"
)

type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

func (l Level) rank() int {
	switch l {
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether l is the same as or more severe than other.
func (l Level) AtLeast(other Level) bool {
	return l.rank() >= other.rank()
}

// MaxLevel returns the more severe of a and b.
func MaxLevel(a, b Level) Level {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

type Metric string

const (
	MetricAccountAge Metric = "account_age_days"
	MetricBadges     Metric = "badges"
	MetricFriends    Metric = "friends"
	MetricGroups     Metric = "groups"
)

type Severity string

const (
	SeverityNone     Severity = ""
	SeverityNearMiss Severity = "near_miss"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Rule is one minimum with its shortfall tiers. A value below Minimum but
// at or above NearMiss is a near miss, at or above Moderate a moderate miss,
// anything lower a severe miss.
type Rule struct {
	Metric          Metric
	Label           string
	Unit            string
	Minimum         int
	NearMiss        int
	Moderate        int
	NearPenalty     int
	ModeratePenalty int
	SeverePenalty   int
}

func (r Rule) tier(value int) (Severity, int) {
	switch {
	case value >= r.Minimum:
		return SeverityNone, 0
	case value >= r.NearMiss:
		return SeverityNearMiss, r.NearPenalty
	case value >= r.Moderate:
		return SeverityModerate, r.ModeratePenalty
	default:
		return SeveritySevere, r.SeverePenalty
	}
}

type Config struct {
	Rules []Rule
	// UnknownPenalty is added for a metric whose value could not be obtained.
	UnknownPenalty int
	// MediumScore and HighScore are the lowest scores of each level.
	MediumScore int
	HighScore   int
	// MediumFailures missed metrics force at least Medium.
	MediumFailures int
}

const (
	MinAccountAgeDays = 60
	MinBadges         = 300
	MinFriends        = 20
	MinGroups         = 10
)

// DefaultConfig is the canonical tier table.
func DefaultConfig() Config {
	return Config{
		Rules: []Rule{
			{Metric: MetricAccountAge, Label: "Account age", Unit: "days", Minimum: MinAccountAgeDays, NearMiss: 45, Moderate: 31, NearPenalty: 10, ModeratePenalty: 20, SeverePenalty: 30},
			{Metric: MetricBadges, Label: "Badge count", Unit: "badges", Minimum: MinBadges, NearMiss: 200, Moderate: 101, NearPenalty: 10, ModeratePenalty: 20, SeverePenalty: 30},
			{Metric: MetricFriends, Label: "Friend count", Unit: "friends", Minimum: MinFriends, NearMiss: 15, Moderate: 10, NearPenalty: 10, ModeratePenalty: 20, SeverePenalty: 30},
			{Metric: MetricGroups, Label: "Group count", Unit: "groups", Minimum: MinGroups, NearMiss: 7, Moderate: 4, NearPenalty: 10, ModeratePenalty: 20, SeverePenalty: 30},
		},
		UnknownPenalty: 20,
		MediumScore:    20,
		HighScore:      60,
		MediumFailures: 3,
	}
}

func (c Config) validate() error {
	if len(c.Rules) == 0 {
		return errors.New("risk config has no rules")
	}
	if c.MediumScore <= 0 || c.HighScore <= c.MediumScore {
		return fmt.Errorf("invalid level cutoffs: medium=%d high=%d", c.MediumScore, c.HighScore)
	}
	for _, r := range c.Rules {
		if !(r.Minimum >= r.NearMiss && r.NearMiss >= r.Moderate) {
			return fmt.Errorf("rule %s: tiers must descend from minimum", r.Metric)
		}
		if !(0 <= r.NearPenalty && r.NearPenalty <= r.ModeratePenalty && r.ModeratePenalty <= r.SeverePenalty) {
			return fmt.Errorf("rule %s: penalties must not decrease with severity", r.Metric)
		}
	}
	return nil
}

type Scorer struct {
	cfg Config
}

func New(cfg Config) (*Scorer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// NewDefault returns a scorer over DefaultConfig.
func NewDefault() *Scorer {
	s, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// LevelFor maps a score to a level using the configured cutoffs.
func (s *Scorer) LevelFor(score int) Level {
	switch {
	case score >= s.cfg.HighScore:
		return LevelHigh
	case score >= s.cfg.MediumScore:
		return LevelMedium
	default:
		return LevelLow
	}
}
