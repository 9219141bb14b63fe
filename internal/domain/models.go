package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Question is a multiple-choice question as released by the quiz service.
// The answer key is never sent to participants.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// QuestionSet is the payload returned once a quiz has started.
type QuestionSet struct {
	Questions []Question
	EndTime   time.Time
}

// Participant identifies who is taking the quiz.
type Participant struct {
	Name   string `json:"name"`
	RollNo string `json:"rollNo"`
	Branch string `json:"branch"`
}

// Complete reports whether every identity field is present.
func (p Participant) Complete() bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.RollNo) != "" &&
		strings.TrimSpace(p.Branch) != ""
}

// Joiner is the record kept between joining a quiz and attempting it.
type Joiner struct {
	Code string `json:"code"`
	Participant
}

// AnswerSet maps a question index to the selected option index. Missing keys are unanswered.
type AnswerSet map[int]int

// Get returns the selected option for question i.
func (a AnswerSet) Get(i int) (int, bool) {
	option, ok := a[i]
	return option, ok
}

// Unanswered counts questions in [0, total) without a selection.
func (a AnswerSet) Unanswered(total int) int {
	missing := 0
	for i := 0; i < total; i++ {
		if _, ok := a[i]; !ok {
			missing++
		}
	}
	return missing
}

// Clone returns an independent copy.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SubmittedAnswers is the wire form of an AnswerSet: every index up to Total is present,
// unanswered ones as null.
type SubmittedAnswers struct {
	Answers AnswerSet
	Total   int
}

func (s SubmittedAnswers) MarshalJSON() ([]byte, error) {
	out := make(map[string]*int, s.Total)
	for i := 0; i < s.Total; i++ {
		if option, ok := s.Answers[i]; ok {
			option := option
			out[strconv.Itoa(i)] = &option
			continue
		}
		out[strconv.Itoa(i)] = nil
	}
	return json.Marshal(out)
}

// Submission is the body sent to the quiz service when an attempt ends.
type Submission struct {
	AttemptID string           `json:"-"`
	Name      string           `json:"name"`
	RollNo    string           `json:"rollNo"`
	Branch    string           `json:"branch"`
	Code      string           `json:"code"`
	Answers   SubmittedAnswers `json:"answers"`
}

// State is a step of the attempt lifecycle.
type State int

const (
	StateAwaitingStart State = iota
	StateActive
	StateSubmitting
	StateSubmitFailed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAwaitingStart:
		return "awaiting_start"
	case StateActive:
		return "active"
	case StateSubmitting:
		return "submitting"
	case StateSubmitFailed:
		return "submit_failed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Trigger records why an attempt was submitted.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerTimeout   Trigger = "time_out"
	TriggerViolation Trigger = "violation"
	TriggerRetry     Trigger = "retry"
)

// AttemptSession is a point-in-time view of one participant's attempt.
type AttemptSession struct {
	ID                   string
	QuizCode             string
	Participant          Participant
	State                State
	EndTime              time.Time
	QuestionCount        int
	CurrentQuestionIndex int
	ViolationCount       int
	Answers              AnswerSet
	SubmitTrigger        Trigger
}

// QuestionView is everything a presenter needs to draw the current question.
type QuestionView struct {
	Index    int      `json:"index"`
	Position int      `json:"position"`
	Total    int      `json:"total"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected int      `json:"selected"`
	IsFirst  bool     `json:"isFirst"`
	IsLast   bool     `json:"isLast"`
}

// HasSelection reports whether an option is selected.
func (v QuestionView) HasSelection() bool {
	return v.Selected >= 0
}

// JoinStatus is the quiz state reported when joining.
type JoinStatus string

const (
	JoinStatusCreated JoinStatus = "created"
	JoinStatusAllowed JoinStatus = "allowed"
	JoinStatusEnded   JoinStatus = "ended"
)

// LeaderboardEntry is one participant's score as published by the quiz service.
type LeaderboardEntry struct {
	Name   string  `json:"name"`
	RollNo string  `json:"rollNo"`
	Score  float64 `json:"score"`
}

// Summary aggregates a quiz's results.
type Summary struct {
	Total   int     `json:"total"`
	Highest float64 `json:"highest"`
	Average float64 `json:"average"`
}
