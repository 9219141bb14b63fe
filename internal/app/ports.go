package app

import (
	"context"

	"quiz-attempt/internal/domain"
)

// QuizService is the remote service that owns quiz state, scoring and persistence.
type QuizService interface {
	// FetchQuestions returns the question set once the quiz has started.
	// Any error means "not started yet" to the attempt.
	FetchQuestions(ctx context.Context, code string) (domain.QuestionSet, error)
	Submit(ctx context.Context, code string, submission domain.Submission) error
}

// JoinGateway checks whether a quiz code can be joined.
type JoinGateway interface {
	Join(ctx context.Context, code, rollNo string) (domain.JoinStatus, error)
}

// Presenter draws the attempt. Implementations must display every string as plain text.
type Presenter interface {
	ShowWaiting(code string, participant domain.Participant)
	RenderQuestion(view domain.QuestionView)
	RenderCountdown(remaining string)
	ShowWarning(message string)
	ShowConfirm(prompt string)
	ShowLoading(message string)
	HideLoading()
	ShowSubmitError(message string)
	ShowCompleted()
}

// LifecycleHandler reacts to a lifecycle event and tells the surface what to do with it.
type LifecycleHandler func(domain.LifecycleEvent) domain.Directive

// LifecycleSource delivers tab-visibility, blur, copy, context-menu and unload signals.
// The returned function detaches the handler; after it returns no new invocation starts.
// Sources must call handlers without holding their own locks.
type LifecycleSource interface {
	Subscribe(handler LifecycleHandler) (unsubscribe func())
}

// JoinerStore keeps the joiner record between the join step and the attempt.
type JoinerStore interface {
	Save(ctx context.Context, joiner domain.Joiner) error
	// Load returns domain.ErrJoinerNotFound when nothing is stored.
	Load(ctx context.Context) (domain.Joiner, error)
	Clear(ctx context.Context) error
}
