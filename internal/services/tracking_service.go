package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/repositories"
	"nltrack/internal/structures"
)

const (
	DefaultDedupWindow = 10 * time.Second
	MinDedupWindow     = 1 * time.Second
	MaxDedupWindow     = 300 * time.Second
)

var ErrUnsafeRedirect = errors.New("redirect target must be an absolute http(s) URL")

// ClampDedupWindow turns the configured seconds into a window inside [1s, 300s]. Zero
// means unset.
func ClampDedupWindow(seconds int) time.Duration {
	if seconds == 0 {
		return DefaultDedupWindow
	}
	w := time.Duration(seconds) * time.Second
	if w < MinDedupWindow {
		return MinDedupWindow
	}
	if w > MaxDedupWindow {
		return MaxDedupWindow
	}
	return w
}

// ValidateRedirectTarget accepts only absolute http and https URLs with a host.
func ValidateRedirectTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrUnsafeRedirect
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsafeRedirect, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if !u.IsAbs() || (scheme != "http" && scheme != "https") || u.Host == "" || u.Opaque != "" {
		return nil, ErrUnsafeRedirect
	}
	return u, nil
}

// PageEvent is a reader-side event (page view or session end) reported by the reading view.
type PageEvent struct {
	Type             models.EventType
	SubjectID        string
	NewsletterID     string
	ArticleID        string
	SessionID        string
	TimeSpentSeconds float64
	UserAgent        string
}

type RecordOutcome int

const (
	OutcomeRecorded RecordOutcome = iota
	OutcomeDeduplicated
)

type TrackingServiceInterface interface {
	RecordOpen(ctx context.Context, claims *models.TrackingClaims, userAgent string) (RecordOutcome, error)
	RecordClick(ctx context.Context, claims *models.TrackingClaims, target, userAgent string) (RecordOutcome, error)
	RecordPageEvent(ctx context.Context, event PageEvent) error
	DedupWindow() time.Duration
}

type TrackingService struct {
	events  repositories.EventRepositoryInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	window  time.Duration
	now     func() time.Time
}

func NewTrackingService(conf *structures.Config, events repositories.EventRepositoryInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) TrackingServiceInterface {
	return newTrackingService(conf, events, logger, metrics, time.Now)
}

func newTrackingService(conf *structures.Config, events repositories.EventRepositoryInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, now func() time.Time) *TrackingService {
	return &TrackingService{
		events:  events,
		logger:  logger,
		metrics: metrics,
		window:  ClampDedupWindow(conf.Tracking.DedupWindowSeconds),
		now:     now,
	}
}

func (s *TrackingService) DedupWindow() time.Duration {
	return s.window
}

// Opens dedup on (subject, newsletter) only; clicks also include the destination, so two
// different links clicked inside the window are both kept.
func dedupKey(eventType models.EventType, claims *models.TrackingClaims, target string) repositories.DedupKey {
	key := repositories.DedupKey{
		EventType:    eventType,
		SubjectID:    claims.Subject,
		NewsletterID: claims.NewsletterID,
	}
	if eventType == models.EventClick {
		key.TargetURL = target
	}
	return key
}

func (s *TrackingService) RecordOpen(ctx context.Context, claims *models.TrackingClaims, userAgent string) (RecordOutcome, error) {
	return s.recordTokenEvent(ctx, models.EventOpen, claims, "", userAgent)
}

func (s *TrackingService) RecordClick(ctx context.Context, claims *models.TrackingClaims, target, userAgent string) (RecordOutcome, error) {
	return s.recordTokenEvent(ctx, models.EventClick, claims, target, userAgent)
}

// recordTokenEvent is check-then-insert without a lock: two requests for the same key
// arriving together can both pass the check, leaving one extra row.
func (s *TrackingService) recordTokenEvent(ctx context.Context, eventType models.EventType, claims *models.TrackingClaims, target, userAgent string) (RecordOutcome, error) {
	if err := claims.CheckShape(); err != nil {
		return OutcomeRecorded, err
	}

	now := s.now().UTC()
	dup, err := s.events.ExistsSince(ctx, dedupKey(eventType, claims, target), now.Add(-s.window))
	if err != nil {
		return OutcomeRecorded, err
	}
	if dup {
		s.metrics.IncEventsDeduplicated(string(eventType))
		s.logger.Debugf(providers.TypeTracking, "Duplicate %s suppressed for newsletter %s", eventType, claims.NewsletterID)
		return OutcomeDeduplicated, nil
	}

	subject := claims.Subject
	event := &models.AnalyticsEvent{
		EventType:    eventType,
		SubjectID:    &subject,
		NewsletterID: claims.NewsletterID,
		TargetURL:    target,
		OccurredAt:   now,
		Metadata:     models.Metadata{},
	}
	if claims.ArticleID != "" {
		article := claims.ArticleID
		event.ArticleID = &article
	}
	if userAgent != "" {
		event.Metadata[models.MetaUserAgent] = userAgent
	}
	if target != "" {
		event.Metadata[models.MetaTargetURL] = target
	}

	if err = s.events.Insert(ctx, event); err != nil {
		return OutcomeRecorded, err
	}
	s.metrics.IncEventsRecorded(string(eventType))
	return OutcomeRecorded, nil
}

// RecordPageEvent stores page views and session ends. They are not deduplicated: each
// page view is a distinct read.
func (s *TrackingService) RecordPageEvent(ctx context.Context, pe PageEvent) error {
	if pe.Type != models.EventPageView && pe.Type != models.EventSessionEnd {
		return fmt.Errorf("%w: %q", models.ErrUnknownEventType, pe.Type)
	}

	event := &models.AnalyticsEvent{
		EventType:    pe.Type,
		SessionID:    pe.SessionID,
		NewsletterID: pe.NewsletterID,
		OccurredAt:   s.now().UTC(),
		Metadata:     models.Metadata{},
	}
	if pe.SubjectID != "" {
		subject := pe.SubjectID
		event.SubjectID = &subject
	}
	if pe.ArticleID != "" {
		article := pe.ArticleID
		event.ArticleID = &article
	}
	if pe.Type == models.EventSessionEnd {
		event.Metadata[models.MetaTimeSpentSeconds] = pe.TimeSpentSeconds
	}
	if pe.UserAgent != "" {
		event.Metadata[models.MetaUserAgent] = pe.UserAgent
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return err
	}
	s.metrics.IncEventsRecorded(string(pe.Type))
	return nil
}
