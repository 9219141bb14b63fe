package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quiz-attempt/internal/domain"
)

type fakeGateway struct {
	status domain.JoinStatus
	err    error
	calls  []string
}

func (g *fakeGateway) Join(_ context.Context, code, rollNo string) (domain.JoinStatus, error) {
	g.calls = append(g.calls, code+"/"+rollNo)
	return g.status, g.err
}

func TestJoinStoresTrimmedJoiner(t *testing.T) {
	gateway := &fakeGateway{status: domain.JoinStatusCreated}
	store := &fakeStore{}
	svc := NewJoinService(gateway, store, nil)

	joiner, err := svc.Join(context.Background(), " abc123 ", domain.Participant{Name: " Asha ", RollNo: "21CS01 ", Branch: "CSE"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joiner.Code != "ABC123" || joiner.Name != "Asha" || joiner.RollNo != "21CS01" {
		t.Fatalf("unexpected joiner: %+v", joiner)
	}
	if len(gateway.calls) != 1 || gateway.calls[0] != "ABC123/21CS01" {
		t.Fatalf("unexpected gateway calls: %v", gateway.calls)
	}
	current, err := svc.Current(context.Background())
	if err != nil || current != joiner {
		t.Fatalf("Current = (%+v, %v)", current, err)
	}
	if err := svc.Forget(context.Background()); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := svc.Current(context.Background()); !errors.Is(err, domain.ErrJoinerNotFound) {
		t.Fatalf("expected ErrJoinerNotFound after Forget, got %v", err)
	}
}

func TestJoinValidation(t *testing.T) {
	valid := domain.Participant{Name: "Asha", RollNo: "21CS01", Branch: "CSE"}
	cases := []struct {
		name        string
		code        string
		participant domain.Participant
	}{
		{"empty code", "", valid},
		{"short code", "AB", valid},
		{"long code", "ABCDEFGHIJK", valid},
		{"symbols", "AB-12", valid},
		{"no name", "ABC123", domain.Participant{RollNo: "1", Branch: "CSE"}},
		{"blank roll", "ABC123", domain.Participant{Name: "Asha", RollNo: "   ", Branch: "CSE"}},
		{"long name", "ABC123", domain.Participant{Name: strings.Repeat("a", 51), RollNo: "1", Branch: "CSE"}},
		{"long roll", "ABC123", domain.Participant{Name: "Asha", RollNo: strings.Repeat("1", 21), Branch: "CSE"}},
		{"long branch", "ABC123", domain.Participant{Name: "Asha", RollNo: "1", Branch: strings.Repeat("b", 51)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &fakeGateway{status: domain.JoinStatusAllowed}
			_, err := NewJoinService(gateway, &fakeStore{}, nil).Join(context.Background(), tc.code, tc.participant)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(gateway.calls) != 0 {
				t.Fatalf("invalid input must not reach the service")
			}
		})
	}
}

func TestJoinStatusHandling(t *testing.T) {
	participant := domain.Participant{Name: "Asha", RollNo: "21CS01", Branch: "CSE"}
	cases := []struct {
		status domain.JoinStatus
		want   error
	}{
		{domain.JoinStatusAllowed, nil},
		{domain.JoinStatusEnded, domain.ErrQuizEnded},
		{"paused", domain.ErrUnexpectedStatus},
	}
	for _, tc := range cases {
		store := &fakeStore{}
		_, err := NewJoinService(&fakeGateway{status: tc.status}, store, nil).Join(context.Background(), "ABC123", participant)
		if !errors.Is(err, tc.want) && !(tc.want == nil && err == nil) {
			t.Fatalf("status %q: expected %v, got %v", tc.status, tc.want, err)
		}
		if tc.want != nil && store.joiner != nil {
			t.Fatalf("status %q: joiner stored for a rejected join", tc.status)
		}
	}
}

func TestVerifyUsesPlaceholderRollNo(t *testing.T) {
	gateway := &fakeGateway{status: domain.JoinStatusEnded}
	svc := NewJoinService(gateway, &fakeStore{}, nil)

	if _, err := svc.Verify(context.Background(), "abc123"); !errors.Is(err, domain.ErrQuizEnded) {
		t.Fatalf("expected ErrQuizEnded, got %v", err)
	}
	if gateway.calls[0] != "ABC123/VERIFY" {
		t.Fatalf("unexpected verify call %q", gateway.calls[0])
	}

	gateway.err = errBoom
	if _, err := svc.Verify(context.Background(), "ABC123"); !errors.Is(err, errBoom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
