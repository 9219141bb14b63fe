package domain

import "errors"

var (
	// ErrJoinRequired is returned when an attempt starts without a quiz code or participant identity.
	ErrJoinRequired = errors.New("join required: missing quiz code or participant identity")
	// ErrNotStarted means the quiz service has not released the questions yet.
	ErrNotStarted = errors.New("quiz not started")
	// ErrNotActive is returned for answer or navigation input outside the active state.
	ErrNotActive = errors.New("attempt is not active")
	// ErrInvalidOption indicates a selected option index outside the current question.
	ErrInvalidOption = errors.New("option out of range")
	// ErrNoPendingConfirm is returned when confirming a submission nobody requested.
	ErrNoPendingConfirm = errors.New("no submission awaiting confirmation")
	// ErrNotRetryable is returned when retrying while no failed submission exists.
	ErrNotRetryable = errors.New("no failed submission to retry")
	// ErrAlreadySubmitted is returned when a submit trigger loses the race to an earlier one.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrQuizEnded is returned when joining a quiz the host already closed.
	ErrQuizEnded = errors.New("quiz has already ended")
	// ErrUnexpectedStatus is returned when the join endpoint reports an unknown status.
	ErrUnexpectedStatus = errors.New("unexpected quiz status")
	// ErrJoinerNotFound indicates no joiner record is stored.
	ErrJoinerNotFound = errors.New("joiner record not found")
	// ErrUnknownCommand is returned for input the controller cannot dispatch.
	ErrUnknownCommand = errors.New("unknown command")
)

// ErrInvalidInput wraps participant input that fails presence or length checks.
var ErrInvalidInput = errors.New("invalid input")
