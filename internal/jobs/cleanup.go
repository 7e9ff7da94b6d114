package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/auth"
)

type Logger interface {
	Info(msg string)
	Error(msg string)
}

// Cleanup purges expired refresh tokens and password resets on a schedule
// so the auth tables do not grow without bound.
type Cleanup struct {
	refresh auth.RefreshTokenRepository
	resets  auth.PasswordResetRepository
	logger  Logger
	cron    *cron.Cron
}

func NewCleanup(refresh auth.RefreshTokenRepository, resets auth.PasswordResetRepository, logger Logger) *Cleanup {
	return &Cleanup{
		refresh: refresh,
		resets:  resets,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Expired tokens only waste space, so a nightly sweep is enough.
const purgeSchedule = "@daily"

func (c *Cleanup) Start() error {
	if _, err := c.cron.AddFunc(purgeSchedule, c.run); err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

func (c *Cleanup) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *Cleanup) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	now := time.Now().UTC().Unix()
	if err := c.refresh.DeleteExpired(ctx, now); err != nil {
		c.logError(fmt.Sprintf("refresh token purge failed: %v", err))
	}
	if err := c.resets.DeleteExpired(ctx, now); err != nil {
		c.logError(fmt.Sprintf("password reset purge failed: %v", err))
	}
	if c.logger != nil {
		c.logger.Info("auth token purge completed")
	}
}

func (c *Cleanup) logError(msg string) {
	if c.logger == nil {
		return
	}
	c.logger.Error(msg)
}
