package wizard

import (
	"strings"
	"time"

	"github.com/AnshRaj112/backcheck-backend/internal/blacklist"
	"github.com/AnshRaj112/backcheck-backend/internal/models"
	"github.com/AnshRaj112/backcheck-backend/internal/risk"
	"github.com/AnshRaj112/backcheck-backend/internal/services"
)

// Page is the model of one rendered wizard page.
type Page struct {
	State     State
	Title     string
	Stages    []Step
	Divisions []models.Division
	Error     string

	General    *GeneralView
	Evaluation *EvaluationView

	BackURL  string
	NextURL  string
	ResetURL string
}

// Step is one entry of the progress bar.
type Step struct {
	Number  int
	Title   string
	Current bool
	Done    bool
}

// NewPage builds the navigation for state. The stage views are attached by the caller.
func NewPage(state State, divisions []models.Division) *Page {
	p := &Page{Divisions: divisions}
	p.setState(state)
	return p
}

func (p *Page) setState(state State) {
	p.State = state
	p.Title = state.Stage.Title()

	p.Stages = p.Stages[:0]
	for s := FirstStage; s <= LastStage; s++ {
		p.Stages = append(p.Stages, Step{
			Number:  int(s),
			Title:   s.Title(),
			Current: s == state.Stage,
			Done:    s < state.Stage,
		})
	}

	p.BackURL, p.NextURL = "", ""
	if state.Stage > FirstStage {
		p.BackURL = state.Back().Href()
	}
	// Stages 1 and 2 advance through their forms.
	if state.Stage >= StageGeneral && state.Stage < LastStage {
		p.NextURL = state.Next().Href()
	}
	p.ResetURL = state.Reset().Href()
}

// Fail shows msg on stage and drops any stage view.
func (p *Page) Fail(stage Stage, msg string) {
	p.setState(p.State.At(stage))
	p.Error = msg
	p.General = nil
	p.Evaluation = nil
}

// DivisionLabel is the display name of the selected division.
func (p *Page) DivisionLabel() string {
	for _, d := range p.Divisions {
		if strings.EqualFold(d.Tag, p.State.Division) {
			return d.Label
		}
	}
	return p.State.Division
}

var sourceLabels = map[models.Source]string{
	models.SourceAvatar:          "avatar",
	models.SourceFriendsCount:    "friend count",
	models.SourceFollowers:       "followers",
	models.SourceFollowing:       "following",
	models.SourceFriends:         "friend list",
	models.SourceGroups:          "groups",
	models.SourceBadges:          "badges",
	models.SourceUsernameHistory: "username history",
}

func unverifiedLabels(sources []models.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if l, ok := sourceLabels[s]; ok {
			out = append(out, l)
		} else {
			out = append(out, string(s))
		}
	}
	return out
}

// GeneralView is stage 3.
type GeneralView struct {
	UserID        int64
	Username      string
	DisplayName   string
	Description   string
	AvatarURL     string
	Created       string
	AgeDays       int
	AgeKnown      bool
	Banned        bool
	Verified      bool
	Counts        models.Counts
	Groups        []models.GroupMembership
	PastUsernames []string
	Unverified    []string
	Level         risk.Level
}

// NewGeneralView derives stage 3 from an aggregate and its base risk.
func NewGeneralView(agg *models.Aggregate, base risk.Result, now time.Time) *GeneralView {
	v := &GeneralView{
		UserID:      agg.Profile.ID,
		Username:    agg.Profile.Username,
		DisplayName: agg.Profile.DisplayName,
		Description: agg.Profile.Description,
		Banned:      agg.Profile.IsBanned,
		Verified:    agg.Profile.HasVerifiedBadge,
		Counts:      agg.Counts,
		Groups:      agg.Groups,
		Unverified:  unverifiedLabels(agg.Unverified),
		Level:       base.Level,
	}
	if agg.Profile.AvatarURL != nil {
		v.AvatarURL = *agg.Profile.AvatarURL
	}
	if agg.Profile.Created != nil {
		v.Created = agg.Profile.Created.UTC().Format("2 Jan 2006")
	}
	v.AgeDays, v.AgeKnown = agg.AccountAgeDays(now)
	for _, u := range agg.UsernameHistory {
		v.PastUsernames = append(v.PastUsernames, u.Username)
	}
	return v
}

type metricText struct {
	label string
	unit  string
}

var metricTexts = map[risk.Metric]metricText{
	risk.MetricAccountAge: {"Account age", "days"},
	risk.MetricBadges:     {"Badges", "badges"},
	risk.MetricFriends:    {"Friends", "friends"},
	risk.MetricGroups:     {"Groups", "groups"},
}

// Requirement is one row of the requirements table.
type Requirement struct {
	Label    string
	Unit     string
	Required int
	Actual   int
	Met      bool
	Verified bool
	Penalty  int
}

// EvaluationView is stage 4.
type EvaluationView struct {
	Level        risk.Level
	LevelClass   string
	Score        int
	BaseScore    int
	Factors      []string
	Warnings     []string
	Requirements []Requirement
	Matches      []blacklist.Match
	Unverified   []string
}

// NewEvaluationView derives stage 4 from an evaluation.
func NewEvaluationView(ev *services.Evaluation) *EvaluationView {
	v := &EvaluationView{
		Level:      ev.Risk.Level,
		LevelClass: strings.ToLower(string(ev.Risk.Level)),
		Score:      ev.Risk.Score,
		BaseScore:  ev.BaseScore,
		Factors:    ev.Risk.Factors,
		Warnings:   ev.Risk.Warnings,
		Matches:    ev.Blacklist.Matches,
		Unverified: unverifiedLabels(ev.Unverified),
	}
	for _, c := range ev.Requirements {
		t, ok := metricTexts[c.Metric]
		if !ok {
			t = metricText{label: string(c.Metric)}
		}
		v.Requirements = append(v.Requirements, Requirement{
			Label:    t.label,
			Unit:     t.unit,
			Required: c.Required,
			Actual:   c.Actual,
			Met:      c.Met,
			Verified: c.Verified,
			Penalty:  c.Penalty,
		})
	}
	return v
}
