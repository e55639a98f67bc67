// Command sweeper is the housekeeping job for the auth stores. It
// hard-deletes sessions and password-reset tokens whose expiry has passed the
// retention window and exits. Revocation never deletes rows online; this job
// is the only thing that does.
package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"campus/config"
	"campus/internal/domain/repository"
	logs "campus/internal/infra/log"
	"campus/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

type sweepParams struct {
	fx.In

	SessionRepo    repository.SessionRepository
	ResetTokenRepo repository.ResetTokenRepository
	Logger         *slog.Logger
	Shutdowner     fx.Shutdowner
}

func main() {
	retention := flag.Duration("retention", 30*24*time.Hour, "How long expired rows are kept before deletion")
	flag.Parse()

	fx.New(
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
			postgres.NewSessionRepository,
			postgres.NewResetTokenRepository,
		),
		fx.Invoke(func(lc fx.Lifecycle, params sweepParams) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go sweep(params, *retention)

					return nil
				},
			})
		}),
	).Run()
}

func sweep(params sweepParams, retention time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-retention)
	exitCode := 0

	sessions, err := params.SessionRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		params.Logger.ErrorContext(ctx, "Failed to delete expired sessions", slog.Any("error", err))
		exitCode = 1
	}

	resetTokens, err := params.ResetTokenRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		params.Logger.ErrorContext(ctx, "Failed to delete expired reset tokens", slog.Any("error", err))
		exitCode = 1
	}

	params.Logger.InfoContext(ctx, "Sweep completed",
		slog.Time("cutoff", cutoff),
		slog.Int64("sessions_deleted", sessions),
		slog.Int64("reset_tokens_deleted", resetTokens),
	)

	if err := params.Shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
		params.Logger.Error("Failed to shut down", slog.Any("error", err))
	}
}
