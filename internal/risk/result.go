package risk

import "fmt"

// Observation is one metric value as the lookup saw it.
type Observation struct {
	Value int `json:"value"`
	// Partial marks a lower bound: the source failed before finishing.
	Partial bool `json:"partial"`
	// Missing marks a value that could not be obtained at all.
	Missing bool `json:"missing"`
}

func Known(v int) Observation   { return Observation{Value: v} }
func Partial(v int) Observation { return Observation{Value: v, Partial: true} }
func Unknown() Observation      { return Observation{Missing: true} }

type Input struct {
	AccountAgeDays Observation
	Badges         Observation
	Friends        Observation
	Groups         Observation
}

func (in Input) observation(m Metric) Observation {
	switch m {
	case MetricAccountAge:
		return in.AccountAgeDays
	case MetricBadges:
		return in.Badges
	case MetricFriends:
		return in.Friends
	case MetricGroups:
		return in.Groups
	default:
		return Unknown()
	}
}

// Check is the outcome of one rule.
type Check struct {
	Metric   Metric   `json:"metric"`
	Required int      `json:"required"`
	Actual   int      `json:"actual"`
	Met      bool     `json:"met"`
	Verified bool     `json:"verified"`
	Severity Severity `json:"severity,omitempty"`
	Penalty  int      `json:"penalty"`
}

type Result struct {
	Level    Level    `json:"level"`
	Score    int      `json:"score"`
	Factors  []string `json:"factors"`
	Warnings []string `json:"warnings"`
	Checks   []Check  `json:"checks,omitempty"`
}

var severityText = map[Severity]string{
	SeverityNearMiss: "slightly below",
	SeverityModerate: "below",
	SeveritySevere:   "far below",
}

// Score evaluates in against every rule. It has no side effects.
func (s *Scorer) Score(in Input) Result {
	res := Result{
		Level:    LevelLow,
		Factors:  []string{},
		Warnings: []string{},
		Checks:   make([]Check, 0, len(s.cfg.Rules)),
	}

	failed := 0
	uncertain := false

	for _, rule := range s.cfg.Rules {
		obs := rule.normalize(in.observation(rule.Metric))
		check := Check{Metric: rule.Metric, Required: rule.Minimum, Actual: obs.Value, Verified: !obs.Partial && !obs.Missing}

		if obs.Missing {
			failed++
			uncertain = true
			check.Penalty = s.cfg.UnknownPenalty
			res.Score += s.cfg.UnknownPenalty
			res.Factors = append(res.Factors, fmt.Sprintf("Could not verify %s", rule.noun()))
			res.Checks = append(res.Checks, check)
			continue
		}

		severity, penalty := rule.tier(obs.Value)
		if severity == SeverityNone {
			// a partial count that already reaches the minimum is still a pass
			check.Met = true
			check.Verified = true
			res.Checks = append(res.Checks, check)
			continue
		}

		failed++
		check.Severity = severity
		check.Penalty = penalty
		res.Score += penalty
		res.Factors = append(res.Factors, fmt.Sprintf("%s of %d %s is %s the %d %s minimum",
			rule.Label, obs.Value, rule.Unit, severityText[severity], rule.Minimum, rule.Unit))
		if obs.Partial {
			uncertain = true
			res.Factors = append(res.Factors, fmt.Sprintf("Could not verify %s", rule.noun()))
		}
		res.Checks = append(res.Checks, check)
	}

	if failed == 0 {
		res.Score = 0
		return res
	}

	res.Level = s.LevelFor(res.Score)
	if s.cfg.MediumFailures > 0 && failed >= s.cfg.MediumFailures {
		res.Level = MaxLevel(res.Level, LevelMedium)
	}
	if uncertain {
		res.Level = MaxLevel(res.Level, LevelMedium)
		res.Warnings = append(res.Warnings, "Some data could not be verified; result is a lower bound")
	}
	return res
}

// Combine layers extra points (for instance blacklist matches) on top of
// base. The resulting level is never lower than base.Level.
func (s *Scorer) Combine(base Result, extra int, factors []string, warnings []string) Result {
	out := base
	out.Factors = append(append([]string{}, base.Factors...), factors...)
	out.Warnings = append(append([]string{}, base.Warnings...), warnings...)
	if extra > 0 {
		out.Score = base.Score + extra
	}
	out.Level = MaxLevel(base.Level, s.LevelFor(out.Score))
	return out
}

func (r Rule) normalize(obs Observation) Observation {
	if obs.Value < 0 {
		obs.Value = 0
	}
	return obs
}

func (r Rule) noun() string {
	switch r.Metric {
	case MetricAccountAge:
		return "account age"
	case MetricBadges:
		return "badge count"
	case MetricFriends:
		return "friend count"
	case MetricGroups:
		return "group count"
	default:
		return string(r.Metric)
	}
}
