package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-attempt/internal/app"
	"quiz-attempt/internal/domain"
	transport "quiz-attempt/internal/transport/http"
	"quiz-attempt/internal/transport/terminal"
)

// NewAttemptCmd waits for the joined quiz to start and runs the attempt.
func NewAttemptCmd(configPath, server *string) *cobra.Command {
	var mode, listen string
	cmd := &cobra.Command{
		Use:   "attempt",
		Short: "Wait for the joined quiz to start and take it",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*configPath, *server)
			if err != nil {
				return err
			}
			defer rt.Close()
			if mode != "" {
				rt.cfg.UI.Mode = mode
			}
			if listen != "" {
				rt.cfg.UI.Listen = listen
			}
			return runAttempt(cmd, rt)
		},
	}
	cmd.Flags().StringVar(&mode, "ui", "", "terminal or web (overrides ui.mode)")
	cmd.Flags().StringVar(&listen, "listen", "", "address for the web UI (overrides ui.listen)")
	return cmd
}

func runAttempt(cmd *cobra.Command, rt *runtime) error {
	joiner, err := rt.store.Load(cmd.Context())
	if errors.Is(err, domain.ErrJoinerNotFound) {
		return joinRequired()
	}
	if err != nil {
		return fmt.Errorf("load joiner: %w", err)
	}

	switch strings.ToLower(rt.cfg.UI.Mode) {
	case "web":
		err = runWebAttempt(cmd, rt, joiner)
	default:
		err = runTerminalAttempt(cmd, rt, joiner)
	}
	switch {
	case errors.Is(err, domain.ErrJoinRequired):
		return joinRequired()
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(cmd.OutOrStdout(), "Attempt stopped before submission.")
		return nil
	}
	return err
}

func runTerminalAttempt(cmd *cobra.Command, rt *runtime, joiner domain.Joiner) error {
	// SIGINT is owned by the interrupt source while the quiz is active.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	presenter := terminal.NewPresenter(cmd.OutOrStdout())
	interrupts := terminal.NewInterruptSource(presenter, cancel)
	attempt := app.NewAttempt(joiner, rt.client, presenter, interrupts, rt.store, rt.attemptConfig(), rt.log)

	go interrupts.Listen(ctx)
	go func() {
		if err := terminal.NewInputLoop(cmd.InOrStdin(), presenter, attempt).Run(ctx); err != nil {
			rt.log.Warn("read input", "err", err)
		}
	}()

	return attempt.Run(ctx)
}

func runWebAttempt(cmd *cobra.Command, rt *runtime, joiner domain.Joiner) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := transport.NewWebUI(rt.log)
	attempt := app.NewAttempt(joiner, rt.client, ui, ui, rt.store, rt.attemptConfig(), rt.log)
	ui.Bind(attempt)

	server := &http.Server{
		Addr:              rt.cfg.UI.Listen,
		Handler:           ui.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.log.Info("serving attempt UI", "addr", rt.cfg.UI.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		runErr := attempt.Run(gctx)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			rt.log.Warn("shutdown web UI", "err", err)
		}
		return runErr
	})
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Quiz submitted successfully.")
	return nil
}

func joinRequired() error {
	return fmt.Errorf("%w: run \"quiz-attempt join\" first", domain.ErrJoinRequired)
}
