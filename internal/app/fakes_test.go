package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-attempt/internal/domain"
)

type fakeService struct {
	mu          sync.Mutex
	notStarted  int
	set         domain.QuestionSet
	fetches     int
	submitErrs  []error
	submissions []domain.Submission
	gate        chan struct{}
}

func (f *fakeService) FetchQuestions(_ context.Context, _ string) (domain.QuestionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.notStarted > 0 {
		f.notStarted--
		return domain.QuestionSet{}, domain.ErrNotStarted
	}
	return f.set, nil
}

func (f *fakeService) Submit(_ context.Context, _ string, submission domain.Submission) error {
	f.mu.Lock()
	gate := f.gate
	f.submissions = append(f.submissions, submission)
	var err error
	if len(f.submitErrs) > 0 {
		err = f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
	}
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeService) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeService) submitted() []domain.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Submission(nil), f.submissions...)
}

type presenterCall struct {
	method string
	arg    string
	view   domain.QuestionView
}

type recordingPresenter struct {
	mu    sync.Mutex
	calls []presenterCall
}

func (p *recordingPresenter) record(c presenterCall) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func (p *recordingPresenter) ShowWaiting(code string, _ domain.Participant) {
	p.record(presenterCall{method: "waiting", arg: code})
}
func (p *recordingPresenter) RenderQuestion(view domain.QuestionView) {
	p.record(presenterCall{method: "question", view: view})
}
func (p *recordingPresenter) RenderCountdown(remaining string) {
	p.record(presenterCall{method: "countdown", arg: remaining})
}
func (p *recordingPresenter) ShowWarning(message string) {
	p.record(presenterCall{method: "warning", arg: message})
}
func (p *recordingPresenter) ShowConfirm(prompt string) {
	p.record(presenterCall{method: "confirm", arg: prompt})
}
func (p *recordingPresenter) ShowLoading(message string) {
	p.record(presenterCall{method: "loading", arg: message})
}
func (p *recordingPresenter) HideLoading() { p.record(presenterCall{method: "hideLoading"}) }
func (p *recordingPresenter) ShowSubmitError(message string) {
	p.record(presenterCall{method: "submitError", arg: message})
}
func (p *recordingPresenter) ShowCompleted() { p.record(presenterCall{method: "completed"}) }

func (p *recordingPresenter) byMethod(method string) []presenterCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []presenterCall
	for _, c := range p.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (p *recordingPresenter) lastView() domain.QuestionView {
	views := p.byMethod("question")
	if len(views) == 0 {
		return domain.QuestionView{}
	}
	return views[len(views)-1].view
}

type fakeLifecycle struct {
	mu       sync.Mutex
	handler  LifecycleHandler
	attached int
}

func (l *fakeLifecycle) Subscribe(handler LifecycleHandler) func() {
	l.mu.Lock()
	l.handler = handler
	l.attached++
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.handler = nil
		l.attached--
		l.mu.Unlock()
	}
}

func (l *fakeLifecycle) emit(ev domain.LifecycleEvent) (domain.Directive, bool) {
	l.mu.Lock()
	h := l.handler
	l.mu.Unlock()
	if h == nil {
		return domain.Directive{}, false
	}
	return h(ev), true
}

func (l *fakeLifecycle) subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attached
}

type fakeStore struct {
	mu      sync.Mutex
	joiner  *domain.Joiner
	cleared int
}

func (s *fakeStore) Save(_ context.Context, joiner domain.Joiner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joiner = &joiner
	return nil
}

func (s *fakeStore) Load(_ context.Context) (domain.Joiner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joiner == nil {
		return domain.Joiner{}, domain.ErrJoinerNotFound
	}
	return *s.joiner, nil
}

func (s *fakeStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joiner = nil
	s.cleared++
	return nil
}

func sampleJoiner() domain.Joiner {
	return domain.Joiner{
		Code:        "ABC123",
		Participant: domain.Participant{Name: "Asha", RollNo: "21CS01", Branch: "CSE"},
	}
}

func twoQuestions(end time.Time) domain.QuestionSet {
	return domain.QuestionSet{
		Questions: []domain.Question{
			{Text: "2+2?", Options: []string{"3", "4", "5", "6"}},
			{Text: "Capital of France?", Options: []string{"Paris", "Rome"}},
		},
		EndTime: end,
	}
}

func testConfig() AttemptConfig {
	return AttemptConfig{
		PollInterval:       5 * time.Millisecond,
		TickInterval:       5 * time.Millisecond,
		ViolationThreshold: 3,
		ForcedSubmitDelay:  20 * time.Millisecond,
	}
}

type harness struct {
	attempt   *Attempt
	service   *fakeService
	presenter *recordingPresenter
	lifecycle *fakeLifecycle
	store     *fakeStore
	cancel    context.CancelFunc
	result    chan error
}

func startAttempt(t *testing.T, service *fakeService, cfg AttemptConfig) *harness {
	t.Helper()
	h := &harness{
		service:   service,
		presenter: &recordingPresenter{},
		lifecycle: &fakeLifecycle{},
		store:     &fakeStore{},
		result:    make(chan error, 1),
	}
	joiner := sampleJoiner()
	h.store.joiner = &joiner
	h.attempt = NewAttempt(joiner, service, h.presenter, h.lifecycle, h.store, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.result <- h.attempt.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *harness) waitState(t *testing.T, want domain.State) {
	t.Helper()
	waitFor(t, func() bool { return h.attempt.Snapshot().State == want }, "state "+want.String())
}

func (h *harness) waitResult(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.result:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var errBoom = errors.New("boom")
