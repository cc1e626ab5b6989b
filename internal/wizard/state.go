package wizard

import (
	"net/url"
	"strconv"
	"strings"
)

// Stage is a step of the check flow, starting at 1.
type Stage int

const (
	StageDivision Stage = iota + 1
	StageUserID
	StageGeneral
	StageEvaluation
)

const (
	FirstStage = StageDivision
	LastStage  = StageEvaluation
)

var stageTitles = map[Stage]string{
	StageDivision:   "Select division",
	StageUserID:     "Enter account ID",
	StageGeneral:    "General information",
	StageEvaluation: "Evaluation",
}

func (s Stage) Title() string {
	return stageTitles[s]
}

// State is everything the wizard knows. It lives in the query string only.
type State struct {
	Stage    Stage
	Division string
	UserID   string
}

func clampStage(s Stage) Stage {
	if s < FirstStage {
		return FirstStage
	}
	if s > LastStage {
		return LastStage
	}
	return s
}

// ParseState reads the wizard state from query values. Unknown or out of
// range stages are clamped, and a stage that needs an account ID falls back
// to the ID entry stage when none was given.
func ParseState(q url.Values) State {
	st := State{
		Stage:    FirstStage,
		Division: strings.ToLower(strings.TrimSpace(q.Get("division"))),
		UserID:   strings.TrimSpace(q.Get("userId")),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("stage"))); err == nil {
		st.Stage = clampStage(Stage(n))
	}
	if st.Stage > StageUserID && st.UserID == "" {
		st.Stage = StageUserID
	}
	return st
}

// Next moves one stage forward, staying on the last stage.
func (s State) Next() State {
	s.Stage = clampStage(s.Stage + 1)
	return s
}

// Back moves one stage back, staying on the first stage.
func (s State) Back() State {
	s.Stage = clampStage(s.Stage - 1)
	return s
}

// Reset starts over and forgets the division and account.
func (s State) Reset() State {
	return State{Stage: FirstStage}
}

// At returns the same selection on another stage.
func (s State) At(stage Stage) State {
	s.Stage = clampStage(stage)
	return s
}

// Query encodes the state. Empty fields are left out.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set("stage", strconv.Itoa(int(s.Stage)))
	if s.Division != "" {
		q.Set("division", s.Division)
	}
	if s.UserID != "" {
		q.Set("userId", s.UserID)
	}
	return q
}

// Href is the wizard link for this state.
func (s State) Href() string {
	return "/?" + s.Query().Encode()
}
