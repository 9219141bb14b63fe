package app

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"quiz-attempt/internal/domain"
)

const (
	maxNameLen   = 50
	maxRollNoLen = 20
	maxBranchLen = 50
	verifyRollNo = "VERIFY"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)

// JoinService verifies quiz codes and records who is about to attempt which quiz.
type JoinService struct {
	gateway JoinGateway
	store   JoinerStore
	log     *slog.Logger
}

func NewJoinService(gateway JoinGateway, store JoinerStore, logger *slog.Logger) *JoinService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JoinService{gateway: gateway, store: store, log: logger}
}

// NormalizeCode trims and upper-cases a quiz code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks the quiz code format: 3-10 letters or digits.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: quiz code is required", domain.ErrInvalidInput)
	}
	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: quiz code must be 3-10 alphanumeric characters", domain.ErrInvalidInput)
	}
	return nil
}

// ValidateParticipant applies presence and length checks to the identity fields.
func ValidateParticipant(p domain.Participant) error {
	fields := []struct {
		label string
		value string
		max   int
	}{
		{"name", p.Name, maxNameLen},
		{"roll number", p.RollNo, maxRollNoLen},
		{"branch", p.Branch, maxBranchLen},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, f.label)
		}
		if utf8.RuneCountInString(v) > f.max {
			return fmt.Errorf("%w: %s must be at most %d characters", domain.ErrInvalidInput, f.label, f.max)
		}
	}
	return nil
}

// Verify checks that a quiz code exists and can still be joined.
func (s *JoinService) Verify(ctx context.Context, code string) (domain.JoinStatus, error) {
	code = NormalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return "", err
	}
	status, err := s.gateway.Join(ctx, code, verifyRollNo)
	if err != nil {
		return "", err
	}
	return checkStatus(status)
}

// Join registers the participant for the quiz and stores the joiner record.
func (s *JoinService) Join(ctx context.Context, code string, participant domain.Participant) (domain.Joiner, error) {
	code = NormalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return domain.Joiner{}, err
	}
	participant = domain.Participant{
		Name:   strings.TrimSpace(participant.Name),
		RollNo: strings.TrimSpace(participant.RollNo),
		Branch: strings.TrimSpace(participant.Branch),
	}
	if err := ValidateParticipant(participant); err != nil {
		return domain.Joiner{}, err
	}

	status, err := s.gateway.Join(ctx, code, participant.RollNo)
	if err != nil {
		return domain.Joiner{}, err
	}
	if _, err := checkStatus(status); err != nil {
		return domain.Joiner{}, err
	}

	joiner := domain.Joiner{Code: code, Participant: participant}
	if err := s.store.Save(ctx, joiner); err != nil {
		return domain.Joiner{}, fmt.Errorf("save joiner: %w", err)
	}
	s.log.Info("joined quiz", "code", code, "rollNo", participant.RollNo, "status", status)
	return joiner, nil
}

// Current returns the stored joiner record, or domain.ErrJoinerNotFound.
func (s *JoinService) Current(ctx context.Context) (domain.Joiner, error) {
	return s.store.Load(ctx)
}

// Forget drops the stored joiner record.
func (s *JoinService) Forget(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func checkStatus(status domain.JoinStatus) (domain.JoinStatus, error) {
	switch status {
	case domain.JoinStatusCreated, domain.JoinStatusAllowed:
		return status, nil
	case domain.JoinStatusEnded:
		return status, domain.ErrQuizEnded
	default:
		return status, fmt.Errorf("%w: %q", domain.ErrUnexpectedStatus, status)
	}
}
