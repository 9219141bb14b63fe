package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"quiz-attempt/internal/app"
	"quiz-attempt/internal/domain"
)

type joinOptions struct {
	code   string
	name   string
	rollNo string
	branch string
}

// NewJoinCmd verifies a quiz code and stores who is about to take it.
func NewJoinCmd(configPath, server *string) *cobra.Command {
	opts := &joinOptions{}
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a quiz with its code and your details",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*configPath, *server)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runJoin(cmd, rt, opts)
		},
	}
	cmd.Flags().StringVar(&opts.code, "code", "", "quiz code")
	cmd.Flags().StringVar(&opts.name, "name", "", "your name")
	cmd.Flags().StringVar(&opts.rollNo, "roll", "", "your roll number")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "your branch")
	return cmd
}

func runJoin(cmd *cobra.Command, rt *runtime, opts *joinOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	service := app.NewJoinService(rt.client, rt.store, rt.log)

	code := opts.code
	if strings.TrimSpace(code) == "" {
		var err error
		if code, err = prompt(in, out, "Quiz code: "); err != nil {
			return err
		}
	}
	if _, err := service.Verify(ctx, code); err != nil {
		return joinError(rt, err)
	}

	participant := domain.Participant{Name: opts.name, RollNo: opts.rollNo, Branch: opts.branch}
	fields := []struct {
		label string
		value *string
	}{
		{"Name: ", &participant.Name},
		{"Roll number: ", &participant.RollNo},
		{"Branch: ", &participant.Branch},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.value) != "" {
			continue
		}
		v, err := prompt(in, out, f.label)
		if err != nil {
			return err
		}
		*f.value = v
	}

	joiner, err := service.Join(ctx, code, participant)
	if err != nil {
		return joinError(rt, err)
	}
	fmt.Fprintf(out, "Joined quiz %s as %s (%s).\nRun \"quiz-attempt attempt\" to wait for the start.\n",
		joiner.Code, domain.PlainText(joiner.Name), domain.PlainText(joiner.RollNo))
	return nil
}

func joinError(rt *runtime, err error) error {
	switch {
	case errors.Is(err, domain.ErrQuizEnded):
		return errors.New("this quiz has already ended")
	case errors.Is(err, domain.ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("join quiz: %w", rt.describe(err))
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// NewForgetCmd drops the stored joiner record.
func NewForgetCmd(configPath, server *string) *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Forget the quiz you joined",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*configPath, *server)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Joiner record cleared.")
			return nil
		},
	}
}
