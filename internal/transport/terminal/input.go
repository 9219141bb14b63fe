package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"quiz-attempt/internal/domain"
)

const helpText = `Commands:
  1-9 or a-z  choose an option
  n / p       next / previous question
  submit      finish the quiz
  yes / no    answer the submit confirmation
  retry       resend a failed submission
  refresh     check whether the quiz has started
  time        show the time left
  help        show this list`

// Dispatcher receives parsed participant commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd domain.Command) error
}

// InputLoop turns lines typed by the participant into commands.
type InputLoop struct {
	in        io.Reader
	presenter *Presenter
	target    Dispatcher
}

func NewInputLoop(in io.Reader, presenter *Presenter, target Dispatcher) *InputLoop {
	return &InputLoop{in: in, presenter: presenter, target: target}
}

// Run reads until ctx ends or input is exhausted. It returns nil on EOF.
func (l *InputLoop) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(l.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			l.handle(ctx, line)
		}
	}
}

func (l *InputLoop) handle(ctx context.Context, line string) {
	switch word := strings.ToLower(strings.TrimSpace(line)); word {
	case "":
		return
	case "time", "t":
		l.presenter.ShowTime()
		return
	case "help", "h", "?":
		l.presenter.Notice(helpText)
		return
	}

	cmd, err := domain.ParseCommand(line)
	if err != nil {
		l.presenter.Notice("Unknown command. Type \"help\" for the list.")
		return
	}
	if err := l.target.Dispatch(ctx, cmd); err != nil {
		if msg := describe(err); msg != "" {
			l.presenter.Notice(msg)
		}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotActive):
		return "The quiz is not in progress."
	case errors.Is(err, domain.ErrInvalidOption):
		return "That option does not exist for this question."
	case errors.Is(err, domain.ErrNoPendingConfirm):
		return "Nothing to confirm. Type \"submit\" first."
	case errors.Is(err, domain.ErrNotRetryable):
		return "There is no failed submission to retry."
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return "The quiz is already being submitted."
	default:
		// Submit failures are already shown by the presenter with a retry hint.
		return ""
	}
}
