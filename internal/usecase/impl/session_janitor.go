package impl

import (
	"context"
	"log/slog"
	"time"

	"authd/config"
	"authd/internal/domain/repository"

	"go.uber.org/fx"
)

// sessionJanitor periodically sweeps expired refresh token rows. Expired
// sessions are already rejected at read time; the sweep keeps the table from
// growing without bound.
type sessionJanitor struct {
	refreshTokenRepo repository.RefreshTokenRepository
	interval         time.Duration
	logger           *slog.Logger
}

// SessionJanitorParams holds dependencies for the janitor, injected by Fx.
type SessionJanitorParams struct {
	fx.In
	fx.Lifecycle

	RefreshTokenRepo repository.RefreshTokenRepository
	Config           *config.Config
	Logger           *slog.Logger
}

// RegisterSessionJanitor wires the background sweep into the Fx lifecycle.
func RegisterSessionJanitor(params SessionJanitorParams) {
	janitor := &sessionJanitor{
		refreshTokenRepo: params.RefreshTokenRepo,
		interval:         params.Config.SessionCleanup.Interval,
		logger:           params.Logger,
	}

	sweepCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go janitor.run(sweepCtx)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()

			return nil
		},
	})
}

func (j *sessionJanitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Session cleanup started", slog.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Session cleanup stopped")

			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *sessionJanitor) sweep(ctx context.Context) {
	deleted, err := j.refreshTokenRepo.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		j.logger.Error("Failed to delete expired refresh tokens", slog.Any("error", err))

		return
	}

	if deleted > 0 {
		j.logger.Info("Swept expired refresh tokens", slog.Int64("deleted", deleted))
	}
}
