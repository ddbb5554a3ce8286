package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/repositories"
	"nltrack/internal/services"
	"nltrack/internal/statistic"
	"nltrack/internal/statistic/interfaces"
)

var ErrArchiveDisabled = errors.New("snapshot archive is disabled (aggregation.archiveDir is empty)")

// Commands backs the one-shot CLI subcommands; they share the server's wiring.
type Commands struct {
	Tokens      services.TokenServiceInterface
	Scheduler   interfaces.SchedulerInterface
	Aggregation services.AggregationServiceInterface
	Snapshots   repositories.SnapshotRepositoryInterface
	Archive     *statistic.SnapshotArchive
	Logger      providers.Logger
}

func NewCommands(
	tokens services.TokenServiceInterface,
	scheduler interfaces.SchedulerInterface,
	aggregation services.AggregationServiceInterface,
	snapshots repositories.SnapshotRepositoryInterface,
	archive *statistic.SnapshotArchive,
	logger providers.Logger,
) *Commands {
	return &Commands{
		Tokens:      tokens,
		Scheduler:   scheduler,
		Aggregation: aggregation,
		Snapshots:   snapshots,
		Archive:     archive,
		Logger:      logger,
	}
}

// parseDay reads a calendar date as midnight in the aggregation timezone, the same day
// boundary the scheduler uses.
func (c *Commands) parseDay(date string) (time.Time, error) {
	day, err := time.ParseInLocation(models.SnapshotDateLayout, date, c.Aggregation.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day, nil
}

func (c *Commands) Snapshot(ctx context.Context, date string) error {
	if date == "" {
		return c.Scheduler.RunOnce(ctx)
	}
	day, err := c.parseDay(date)
	if err != nil {
		return err
	}
	return c.Scheduler.GenerateAndArchive(ctx, day)
}

// Audit compares a day's archived rows with the rows currently in the store.
func (c *Commands) Audit(ctx context.Context, date string) (*statistic.SnapshotAudit, error) {
	if !c.Archive.Enabled() {
		return nil, ErrArchiveDisabled
	}
	if _, err := c.parseDay(date); err != nil {
		return nil, err
	}

	archived, err := c.Archive.Load(date)
	if err != nil {
		return nil, fmt.Errorf("load archive %s: %w", date, err)
	}
	if archived == nil {
		return nil, fmt.Errorf("no archive for %s", date)
	}
	stored, err := c.Snapshots.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	audit := statistic.CompareSnapshots(date, archived, stored)
	if !audit.Clean() {
		c.Logger.Warnf(providers.TypeAggregation, "Audit %s: %d missing, %d unexpected, %d changed",
			date, len(audit.Missing), len(audit.Unexpected), len(audit.Changed))
	}
	return audit, nil
}

// Issue mints a token and, when store is set, persists its hash for later revocation.
func (c *Commands) Issue(ctx context.Context, subjectID, newsletterID, articleID string, store bool) (string, error) {
	if newsletterID == "" {
		return "", fmt.Errorf("newsletter id is required")
	}
	claims := models.TrackingClaims{NewsletterID: newsletterID, ArticleID: articleID}
	token, err := c.Tokens.Generate(subjectID, claims)
	if err != nil {
		return "", err
	}
	if store {
		if err = c.Tokens.Store(ctx, token, subjectID, nil); err != nil {
			return "", err
		}
	}
	return token, nil
}

func (c *Commands) Revoke(ctx context.Context, token string) error {
	return c.Tokens.Revoke(ctx, token)
}

func (c *Commands) RevokeSubject(ctx context.Context, subjectID string) error {
	return c.Tokens.RevokeAllForSubject(ctx, subjectID)
}
