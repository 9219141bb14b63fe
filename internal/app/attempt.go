package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-attempt/internal/domain"
)

const (
	defaultPollInterval       = 3 * time.Second
	defaultTickInterval       = time.Second
	defaultViolationThreshold = 3
	defaultForcedSubmitDelay  = 2 * time.Second
)

// AttemptConfig tunes the attempt lifecycle. Zero values fall back to defaults.
type AttemptConfig struct {
	PollInterval       time.Duration
	TickInterval       time.Duration
	ViolationThreshold int
	ForcedSubmitDelay  time.Duration
}

func (c AttemptConfig) withDefaults() AttemptConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.ViolationThreshold <= 0 {
		c.ViolationThreshold = defaultViolationThreshold
	}
	if c.ForcedSubmitDelay < 0 {
		c.ForcedSubmitDelay = 0
	} else if c.ForcedSubmitDelay == 0 {
		c.ForcedSubmitDelay = defaultForcedSubmitDelay
	}
	return c
}

// Attempt drives one participant's pass through a quiz:
// awaiting start -> active -> submitting -> completed, with a retryable
// submit_failed state when the service rejects or drops the submission.
//
// All state lives behind mu. Timer goroutines and network completions re-check
// state under mu before acting, so cancelled timers and stale responses are no-ops.
type Attempt struct {
	joiner    domain.Joiner
	service   QuizService
	presenter Presenter
	lifecycle LifecycleSource
	store     JoinerStore
	cfg       AttemptConfig
	log       *slog.Logger
	now       func() time.Time

	mu             sync.Mutex
	id             string
	started        bool
	state          domain.State
	questions      []domain.Question
	endTime        time.Time
	index          int
	answers        domain.AnswerSet
	violations     int
	confirmPending bool
	trigger        domain.Trigger
	generation     int
	runCtx         context.Context

	poll        *repeatingTask
	countdown   *repeatingTask
	forced      *time.Timer
	unsubscribe func()
	done        chan struct{}
}

// NewAttempt builds an attempt for the stored joiner. store and lifecycle may be nil.
func NewAttempt(joiner domain.Joiner, service QuizService, presenter Presenter, lifecycle LifecycleSource, store JoinerStore, cfg AttemptConfig, logger *slog.Logger) *Attempt {
	return NewAttemptWithClock(joiner, service, presenter, lifecycle, store, cfg, logger, time.Now)
}

// NewAttemptWithClock allows deterministic countdowns in tests.
func NewAttemptWithClock(joiner domain.Joiner, service QuizService, presenter Presenter, lifecycle LifecycleSource, store JoinerStore, cfg AttemptConfig, logger *slog.Logger, now func() time.Time) *Attempt {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if lifecycle == nil {
		lifecycle = noLifecycle{}
	}
	return &Attempt{
		joiner:    joiner,
		service:   service,
		presenter: presenter,
		lifecycle: lifecycle,
		store:     store,
		cfg:       cfg.withDefaults(),
		log:       logger.With("code", joiner.Code, "rollNo", joiner.RollNo),
		now:       now,
		id:        uuid.NewString(),
		state:     domain.StateAwaitingStart,
		answers:   make(domain.AnswerSet),
		done:      make(chan struct{}),
		runCtx:    context.Background(),
	}
}

// Run waits for the quiz to start and blocks until the attempt completes or ctx ends.
// A missing code or identity returns domain.ErrJoinRequired before anything is shown.
func (a *Attempt) Run(ctx context.Context) error {
	if strings.TrimSpace(a.joiner.Code) == "" || !a.joiner.Participant.Complete() {
		return domain.ErrJoinRequired
	}

	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return errors.New("attempt already running")
	}
	a.started = true
	a.runCtx = ctx
	a.presenter.ShowWaiting(a.joiner.Code, a.plainParticipant())
	task := newRepeatingTask(a.cfg.PollInterval)
	a.poll = task
	task.start(true, func() { a.pollOnce(ctx, task) })
	a.mu.Unlock()

	a.log.Info("waiting for quiz to start", "attempt", a.id)

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		a.mu.Lock()
		a.teardownLocked()
		a.mu.Unlock()
		return ctx.Err()
	}
}

// Done is closed once the attempt reaches the completed state.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// PollNow checks for the quiz start immediately instead of waiting for the next tick.
func (a *Attempt) PollNow(ctx context.Context) {
	a.mu.Lock()
	task := a.poll
	a.mu.Unlock()
	if task == nil {
		return
	}
	a.pollOnce(ctx, task)
}

func (a *Attempt) pollOnce(ctx context.Context, task *repeatingTask) {
	if task.stopped() {
		return
	}
	set, err := a.service.FetchQuestions(ctx, a.joiner.Code)
	if err != nil {
		a.log.Debug("quiz not started yet", "err", err)
		return
	}
	if len(set.Questions) == 0 {
		a.log.Debug("quiz not started yet", "questions", 0)
		return
	}
	if set.EndTime.IsZero() {
		a.log.Warn("quiz started without an end time; still waiting")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domain.StateAwaitingStart || a.poll != task {
		return
	}
	a.activateLocked(set)
}

func (a *Attempt) activateLocked(set domain.QuestionSet) {
	a.poll.Stop()
	a.poll = nil

	a.questions = make([]domain.Question, len(set.Questions))
	for i, q := range set.Questions {
		options := make([]string, len(q.Options))
		for j, o := range q.Options {
			options[j] = domain.PlainText(o)
		}
		a.questions[i] = domain.Question{Text: domain.PlainText(q.Text), Options: options}
	}
	a.endTime = set.EndTime
	a.index = 0
	a.state = domain.StateActive
	a.unsubscribe = a.lifecycle.Subscribe(a.onLifecycle)

	a.log.Info("quiz started", "questions", len(a.questions), "endTime", a.endTime)

	a.renderLocked()
	a.presenter.RenderCountdown(domain.FormatRemaining(a.endTime.Sub(a.now())))

	task := newRepeatingTask(a.cfg.TickInterval)
	a.countdown = task
	task.start(false, func() { a.tick(task) })
}

func (a *Attempt) tick(task *repeatingTask) {
	a.mu.Lock()
	if a.state != domain.StateActive || a.countdown != task {
		a.mu.Unlock()
		return
	}
	remaining := a.endTime.Sub(a.now())
	if remaining > 0 {
		a.presenter.RenderCountdown(domain.FormatRemaining(remaining))
		a.mu.Unlock()
		return
	}
	a.presenter.RenderCountdown(domain.FormatRemaining(0))
	submission, gen, err := a.beginSubmitLocked(domain.TriggerTimeout)
	ctx := a.runCtx
	a.mu.Unlock()
	if err != nil {
		return
	}
	_ = a.finishSubmit(ctx, submission, gen)
}

// Select records option for the current question.
func (a *Attempt) Select(option int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domain.StateActive {
		return domain.ErrNotActive
	}
	if option < 0 || option >= len(a.questions[a.index].Options) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidOption, option+1)
	}
	a.answers[a.index] = option
	a.renderLocked()
	return nil
}

// Next moves to the following question; it is a no-op on the last one.
func (a *Attempt) Next() error {
	return a.move(1)
}

// Prev moves to the previous question; it is a no-op on the first one.
func (a *Attempt) Prev() error {
	return a.move(-1)
}

func (a *Attempt) move(delta int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domain.StateActive {
		return domain.ErrNotActive
	}
	next := a.index + delta
	if next < 0 || next >= len(a.questions) {
		return nil
	}
	a.index = next
	a.renderLocked()
	return nil
}

// RequestSubmit asks the participant to confirm, reporting how many questions are unanswered.
func (a *Attempt) RequestSubmit() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domain.StateActive {
		return domain.ErrNotActive
	}
	a.confirmPending = true
	a.presenter.ShowConfirm(domain.ConfirmPrompt(a.answers.Unanswered(len(a.questions))))
	return nil
}

// CancelSubmit dismisses a pending confirmation.
func (a *Attempt) CancelSubmit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.confirmPending && a.state == domain.StateActive {
		a.confirmPending = false
		a.renderLocked()
	}
}

// ConfirmSubmit accepts a pending confirmation and submits.
func (a *Attempt) ConfirmSubmit(ctx context.Context) error {
	a.mu.Lock()
	if !a.confirmPending {
		a.mu.Unlock()
		return domain.ErrNoPendingConfirm
	}
	a.confirmPending = false
	submission, gen, err := a.beginSubmitLocked(domain.TriggerManual)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return a.finishSubmit(ctx, submission, gen)
}

// Retry re-sends a submission that previously failed. Answers are unchanged.
func (a *Attempt) Retry(ctx context.Context) error {
	a.mu.Lock()
	if a.state != domain.StateSubmitFailed {
		a.mu.Unlock()
		return domain.ErrNotRetryable
	}
	submission, gen, err := a.beginSubmitLocked(domain.TriggerRetry)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return a.finishSubmit(ctx, submission, gen)
}

// Dispatch routes participant input to the matching operation.
func (a *Attempt) Dispatch(ctx context.Context, cmd domain.Command) error {
	switch cmd.Kind {
	case domain.CommandSelect:
		return a.Select(cmd.Option)
	case domain.CommandNext:
		return a.Next()
	case domain.CommandPrev:
		return a.Prev()
	case domain.CommandSubmit:
		return a.RequestSubmit()
	case domain.CommandConfirm:
		return a.ConfirmSubmit(ctx)
	case domain.CommandCancel:
		a.CancelSubmit()
		return nil
	case domain.CommandRetry:
		return a.Retry(ctx)
	case domain.CommandRefresh:
		a.PollNow(ctx)
		return nil
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Kind)
	}
}

// Snapshot returns a copy of the attempt's current state.
func (a *Attempt) Snapshot() domain.AttemptSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.AttemptSession{
		ID:                   a.id,
		QuizCode:             a.joiner.Code,
		Participant:          a.joiner.Participant,
		State:                a.state,
		EndTime:              a.endTime,
		QuestionCount:        len(a.questions),
		CurrentQuestionIndex: a.index,
		ViolationCount:       a.violations,
		Answers:              a.answers.Clone(),
		SubmitTrigger:        a.trigger,
	}
}

// beginSubmitLocked performs the one-shot transition into submitting.
// Only active (or submit_failed for retries) attempts may enter it.
func (a *Attempt) beginSubmitLocked(trigger domain.Trigger) (domain.Submission, int, error) {
	switch {
	case a.state == domain.StateActive:
		a.trigger = trigger
	case a.state == domain.StateSubmitFailed && trigger == domain.TriggerRetry:
	default:
		return domain.Submission{}, 0, domain.ErrAlreadySubmitted
	}

	a.state = domain.StateSubmitting
	a.confirmPending = false
	a.teardownLocked()
	a.generation++

	a.log.Info("submitting attempt", "trigger", trigger, "generation", a.generation)
	a.presenter.ShowLoading("Submitting quiz...")

	return domain.Submission{
		AttemptID: a.id,
		Name:      a.joiner.Name,
		RollNo:    a.joiner.RollNo,
		Branch:    a.joiner.Branch,
		Code:      a.joiner.Code,
		Answers:   domain.SubmittedAnswers{Answers: a.answers.Clone(), Total: len(a.questions)},
	}, a.generation, nil
}

func (a *Attempt) finishSubmit(ctx context.Context, submission domain.Submission, gen int) error {
	err := a.service.Submit(ctx, a.joiner.Code, submission)
	return a.completeSubmit(ctx, gen, err)
}

// completeSubmit applies a submit response. Responses from an older generation are ignored.
func (a *Attempt) completeSubmit(ctx context.Context, gen int, err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation || a.state != domain.StateSubmitting {
		a.log.Debug("ignoring stale submit response", "generation", gen)
		return err
	}
	a.presenter.HideLoading()

	if err != nil {
		a.state = domain.StateSubmitFailed
		a.log.Warn("submit failed", "err", err)
		a.presenter.ShowSubmitError(fmt.Sprintf("Failed to submit quiz: %v. Your answers are kept; retry to send them again.", err))
		return err
	}

	a.state = domain.StateCompleted
	if a.store != nil {
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			a.log.Warn("clear joiner record", "err", clearErr)
		}
	}
	a.log.Info("attempt completed", "trigger", a.trigger)
	a.presenter.ShowCompleted()
	close(a.done)
	return nil
}

// teardownLocked cancels every timer and detaches every listener.
func (a *Attempt) teardownLocked() {
	if a.poll != nil {
		a.poll.Stop()
		a.poll = nil
	}
	if a.countdown != nil {
		a.countdown.Stop()
		a.countdown = nil
	}
	if a.forced != nil {
		a.forced.Stop()
		a.forced = nil
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *Attempt) renderLocked() {
	q := a.questions[a.index]
	selected := -1
	if option, ok := a.answers.Get(a.index); ok {
		selected = option
	}
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	a.presenter.RenderQuestion(domain.QuestionView{
		Index:    a.index,
		Position: a.index + 1,
		Total:    len(a.questions),
		Text:     q.Text,
		Options:  options,
		Selected: selected,
		IsFirst:  a.index == 0,
		IsLast:   a.index == len(a.questions)-1,
	})
}

func (a *Attempt) plainParticipant() domain.Participant {
	return domain.Participant{
		Name:   domain.PlainText(a.joiner.Name),
		RollNo: domain.PlainText(a.joiner.RollNo),
		Branch: domain.PlainText(a.joiner.Branch),
	}
}

type noLifecycle struct{}

func (noLifecycle) Subscribe(LifecycleHandler) func() { return func() {} }
