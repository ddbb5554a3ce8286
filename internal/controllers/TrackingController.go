package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21,
	0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

type pageEventRequest struct {
	Token            string  `json:"t"`
	Type             string  `json:"type"`
	NewsletterID     string  `json:"nwl"`
	ArticleID        string  `json:"art"`
	SessionID        string  `json:"sid"`
	TimeSpentSeconds float64 `json:"timeSpentSeconds"`
}

type TrackingController struct {
	logger   providers.Logger
	tokens   services.TokenServiceInterface
	tracking services.TrackingServiceInterface
	metrics  providers.MetricsProviderInterface
}

func NewTrackingController(logger providers.Logger, tokens services.TokenServiceInterface, tracking services.TrackingServiceInterface, metrics providers.MetricsProviderInterface) *TrackingController {
	return &TrackingController{
		logger:   logger,
		tokens:   tokens,
		tracking: tracking,
		metrics:  metrics,
	}
}

func (tc *TrackingController) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pixelGIF)
}

// verifiedClaims returns the claims of a usable token, or nil when the request must be
// treated as untracked.
func (tc *TrackingController) verifiedClaims(r *http.Request, token string) *models.TrackingClaims {
	if token == "" {
		return nil
	}
	res := tc.tokens.Verify(r.Context(), token)
	if !res.Valid {
		tc.metrics.IncTokenRejected(string(res.Error))
		tc.logger.Debugf(providers.TypeTracking, "Token rejected on %s: %s", r.URL.Path, res.Error)
		return nil
	}
	if err := res.Claims.CheckShape(); err != nil {
		tc.metrics.IncTokenRejected("incomplete")
		tc.logger.Warnf(providers.TypeTracking, "Token accepted but unusable on %s: %s", r.URL.Path, err)
		return nil
	}
	return res.Claims
}

// Open always answers with the pixel; tracking failures must not break the email.
func (tc *TrackingController) Open(w http.ResponseWriter, r *http.Request) {
	claims := tc.verifiedClaims(r, r.URL.Query().Get("t"))
	if claims != nil {
		if _, err := tc.tracking.RecordOpen(r.Context(), claims, r.UserAgent()); err != nil {
			tc.logger.Errorf(providers.TypeTracking, "Open not recorded for newsletter %s: %s", claims.NewsletterID, err)
		}
	}
	tc.servePixel(w)
}

// Click validates the destination first; after that the recipient is always redirected,
// whether or not the click could be recorded.
func (tc *TrackingController) Click(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawTarget := q.Get("url")
	if rawTarget == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	target, err := services.ValidateRedirectTarget(rawTarget)
	if err != nil {
		tc.logger.Warnf(providers.TypeTracking, "Click rejected: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	destination := target.String()

	claims := tc.verifiedClaims(r, q.Get("t"))
	if claims != nil {
		if _, err := tc.tracking.RecordClick(r.Context(), claims, destination, r.UserAgent()); err != nil {
			tc.logger.Errorf(providers.TypeTracking, "Click not recorded for newsletter %s: %s", claims.NewsletterID, err)
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, destination, http.StatusFound)
}

// ReceiveEvent accepts page views and session ends from the reading view. A valid token
// attributes the event to its subject; otherwise it is stored anonymously.
func (tc *TrackingController) ReceiveEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload pageEventRequest
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	eventType := models.EventType(payload.Type)
	if (eventType != models.EventPageView && eventType != models.EventSessionEnd) ||
		payload.NewsletterID == "" || payload.ArticleID == "" || payload.TimeSpentSeconds < 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	event := services.PageEvent{
		Type:             eventType,
		NewsletterID:     payload.NewsletterID,
		ArticleID:        payload.ArticleID,
		SessionID:        payload.SessionID,
		TimeSpentSeconds: payload.TimeSpentSeconds,
		UserAgent:        r.UserAgent(),
	}
	if claims := tc.verifiedClaims(r, payload.Token); claims != nil {
		event.SubjectID = claims.Subject
	}

	if err = tc.tracking.RecordPageEvent(r.Context(), event); err != nil {
		tc.logger.Errorf(providers.TypeTracking, "%s not recorded for newsletter %s: %s", eventType, payload.NewsletterID, err)
	}
	w.WriteHeader(http.StatusCreated)
}
