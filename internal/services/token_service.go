package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/repositories"
	"nltrack/internal/structures"
)

type VerifyError string

const (
	VerifyMalformed        VerifyError = "malformed"
	VerifyBadSignature     VerifyError = "invalid_signature"
	VerifyExpired          VerifyError = "expired"
	VerifyRevoked          VerifyError = "revoked"
	VerifyRevocationFailed VerifyError = "revocation_unavailable"
	VerifyInvalid          VerifyError = "invalid"
)

// VerifyResult is returned for every token; Claims is set only when Valid.
type VerifyResult struct {
	Valid  bool
	Claims *models.TrackingClaims
	Error  VerifyError
}

type TokenServiceInterface interface {
	Generate(subjectID string, claims models.TrackingClaims) (string, error)
	Verify(ctx context.Context, token string) VerifyResult
	Hash(token string) string
	Revoke(ctx context.Context, token string) error
	RevokeAllForSubject(ctx context.Context, subjectID string) error
	Store(ctx context.Context, token, subjectID string, claims *models.TrackingClaims) error
}

type TokenService struct {
	secret   []byte
	lifetime time.Duration
	tokens   repositories.TokenRepositoryInterface
	logger   providers.Logger
	parser   *jwt.Parser
	now      func() time.Time
}

func NewTokenService(conf *structures.Config, tokens repositories.TokenRepositoryInterface, logger providers.Logger) (TokenServiceInterface, error) {
	return newTokenService(conf, tokens, logger, time.Now)
}

func newTokenService(conf *structures.Config, tokens repositories.TokenRepositoryInterface, logger providers.Logger, now func() time.Time) (*TokenService, error) {
	if conf.Tracking.SigningSecret == "" {
		return nil, providers.ErrMissingSigningSecret
	}

	days := conf.Tracking.TokenLifetimeDays
	if days <= 0 {
		days = 30
	}

	return &TokenService{
		secret:   []byte(conf.Tracking.SigningSecret),
		lifetime: time.Duration(days) * 24 * time.Hour,
		tokens:   tokens,
		logger:   logger,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(now),
		),
		now: now,
	}, nil
}

// Generate fills sub, iat, exp and jti; every other claim comes from the caller.
func (s *TokenService) Generate(subjectID string, claims models.TrackingClaims) (string, error) {
	issued := s.now().Truncate(time.Second)

	claims.Subject = subjectID
	claims.IssuedAt = jwt.NewNumericDate(issued)
	claims.ExpiresAt = jwt.NewNumericDate(issued.Add(s.lifetime))
	claims.ID = uuid.NewString()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *TokenService) keyFunc(_ *jwt.Token) (any, error) {
	return s.secret, nil
}

// Verify checks structure, then signature, then expiry, then revocation. The jwt parser
// performs the first three in that order; HMAC comparison is constant time.
func (s *TokenService) Verify(ctx context.Context, token string) VerifyResult {
	claims := &models.TrackingClaims{}
	_, err := s.parser.ParseWithClaims(token, claims, s.keyFunc)
	if err != nil {
		return VerifyResult{Error: classifyParseError(err)}
	}

	record, err := s.tokens.FindByHash(ctx, s.Hash(token))
	if err != nil {
		s.logger.Errorf(providers.TypeTracking, "Revocation lookup failed: %s", err)
		return VerifyResult{Error: VerifyRevocationFailed}
	}
	if record != nil && record.Revoked {
		return VerifyResult{Error: VerifyRevoked}
	}

	return VerifyResult{Valid: true, Claims: claims}
}

func classifyParseError(err error) VerifyError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return VerifyMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return VerifyBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return VerifyExpired
	default:
		return VerifyInvalid
	}
}

func (s *TokenService) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// decode reads the payload without checking the signature; it is only used to fill the
// audit fields of a record keyed by the token hash.
func (s *TokenService) decode(token string) (*models.TrackingClaims, error) {
	claims := &models.TrackingClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) record(token, subjectID string, claims *models.TrackingClaims) (*models.TrackingTokenRecord, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	rec := &models.TrackingTokenRecord{
		TokenHash:     s.Hash(token),
		SubjectID:     subjectID,
		IssuedPayload: string(payload),
	}
	if claims.ExpiresAt != nil {
		rec.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return rec, nil
}

func (s *TokenService) Store(ctx context.Context, token, subjectID string, claims *models.TrackingClaims) error {
	if claims == nil {
		decoded, err := s.decode(token)
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
		claims = decoded
	}

	rec, err := s.record(token, subjectID, claims)
	if err != nil {
		return err
	}
	return s.tokens.Save(ctx, rec)
}

// Revoke is idempotent. A string that does not decode as a token cannot be presented
// successfully anyway, so it is accepted as a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.decode(token)
	if err != nil {
		s.logger.Debugf(providers.TypeTracking, "Revoke ignored for undecodable token")
		return nil
	}

	rec, err := s.record(token, claims.Subject, claims)
	if err != nil {
		return err
	}
	return s.tokens.MarkRevoked(ctx, rec)
}

func (s *TokenService) RevokeAllForSubject(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return nil
	}
	n, err := s.tokens.RevokeBySubject(ctx, subjectID)
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeTracking, "Revoked %d stored tokens for a subject", n)
	return nil
}
