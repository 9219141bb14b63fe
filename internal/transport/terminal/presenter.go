package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"quiz-attempt/internal/domain"
)

// Presenter draws the attempt as plain text lines.
type Presenter struct {
	mu        sync.Mutex
	w         io.Writer
	remaining string
}

func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{w: w}
}

func (p *Presenter) ShowWaiting(code string, participant domain.Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("Waiting for quiz %s to start (%s, %s, %s)\n",
		domain.PlainText(code), domain.PlainText(participant.Name),
		domain.PlainText(participant.RollNo), domain.PlainText(participant.Branch))
	p.printf("The first question appears as soon as the quiz starts. Type \"refresh\" to check now.\n")
}

func (p *Presenter) RenderQuestion(view domain.QuestionView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "\nQuestion %d/%d\n%s\n", view.Position, view.Total, domain.PlainText(view.Text))
	for i, option := range view.Options {
		marker := " "
		if i == view.Selected {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %c) %s\n", marker, optionLetter(i), domain.PlainText(option))
	}
	if p.remaining != "" {
		fmt.Fprintf(&b, "Time left: %s\n", p.remaining)
	}

	var hints []string
	if !view.HasSelection() && len(view.Options) > 0 {
		hints = append(hints, fmt.Sprintf("[a-%c] answer", optionLetter(len(view.Options)-1)))
	}
	if !view.IsFirst {
		hints = append(hints, "[p] previous")
	}
	if view.IsLast {
		hints = append(hints, "[submit] finish")
	} else {
		hints = append(hints, "[n] next")
	}
	fmt.Fprintf(&b, "%s\n", strings.Join(hints, "  "))
	p.printf("%s", b.String())
}

// RenderCountdown only records the value; it is printed with the question, on
// request, and once when time runs out.
func (p *Presenter) RenderCountdown(remaining string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remaining = domain.PlainText(remaining)
	if p.remaining == domain.FormatRemaining(0) {
		p.printf("Time left: %s\n", p.remaining)
	}
}

// ShowTime prints the last countdown value.
func (p *Presenter) ShowTime() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remaining == "" {
		p.printf("The quiz has not started yet.\n")
		return
	}
	p.printf("Time left: %s\n", p.remaining)
}

func (p *Presenter) ShowWarning(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("! %s\n", domain.PlainText(message))
}

func (p *Presenter) ShowConfirm(prompt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, line := range strings.Split(prompt, "\n") {
		if line = domain.PlainText(line); line != "" {
			p.printf("%s\n", line)
		}
	}
	p.printf("Type \"yes\" to submit or \"no\" to keep answering.\n")
}

func (p *Presenter) ShowLoading(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("%s\n", domain.PlainText(message))
}

func (p *Presenter) HideLoading() {}

func (p *Presenter) ShowSubmitError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("%s\nType \"retry\" to try again.\n", domain.PlainText(message))
}

func (p *Presenter) ShowCompleted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("Quiz submitted successfully. You can close this window.\n")
}

// Notice prints a one-off message, for example a rejected command.
func (p *Presenter) Notice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("%s\n", domain.PlainText(message))
}

func (p *Presenter) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func optionLetter(i int) rune {
	if i < 26 {
		return rune('a' + i)
	}
	return '?'
}
