package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/pkg"
)

const (
	TokenIssuer       = "tralog"
	MinPasswordLength = 4
	MaxLabelLength    = 100
	MaxExpiresInDays  = 365

	tokenLength      = 24
	linkCacheExpire  = 5 * 60 // seconds
	linkCacheSize    = 8 * 1024 * 1024
	linkCachePrefix  = "share-link::"
	DefaultViewerTTL = 24 * time.Hour
)

type linksRepo interface {
	Add(ctx context.Context, link StoredLink) error
	Get(ctx context.Context, token string) (*StoredLink, error)
	List(ctx context.Context, userID string) ([]Link, error)
	Delete(ctx context.Context, userID, token string) error
}

type CreateRequest struct {
	Password      string `json:"password"`
	Label         string `json:"label"`
	ExpiresInDays int    `json:"expiresInDays"`
}

// ViewerAccess is handed to a share viewer after the link password was accepted.
type ViewerAccess struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Label     string    `json:"label"`
}

type viewerClaims struct {
	ShareToken string `json:"sid"`
	jwt.RegisteredClaims
}

type Service struct {
	repo      linksRepo
	cache     *freecache.Cache
	jwtSecret []byte
	viewerTTL time.Duration

	Now              func() time.Time
	RandStringFunc   func(s int) (string, error)
	HashPasswordFunc func(password string) (string, error)
}

func NewService(repo linksRepo, jwtSecret string, viewerTTL time.Duration) *Service {
	if viewerTTL <= 0 {
		viewerTTL = DefaultViewerTTL
	}
	return &Service{
		repo:             repo,
		cache:            freecache.NewCache(linkCacheSize),
		jwtSecret:        []byte(jwtSecret),
		viewerTTL:        viewerTTL,
		Now:              time.Now,
		RandStringFunc:   pkg.GenerateRandomString,
		HashPasswordFunc: pkg.HashPassword,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (_ *Link, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.share.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	req.Label = strings.TrimSpace(req.Label)
	switch {
	case len(req.Password) < MinPasswordLength:
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidRequest, MinPasswordLength)
	case len(req.Label) > MaxLabelLength:
		return nil, fmt.Errorf("%w: label too long", ErrInvalidRequest)
	case req.ExpiresInDays < 0 || req.ExpiresInDays > MaxExpiresInDays:
		return nil, fmt.Errorf("%w: expiresInDays must be between 0 and %d", ErrInvalidRequest, MaxExpiresInDays)
	}

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate share token: %w", err)
	}

	hash, err := s.HashPasswordFunc(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash share password: %w", err)
	}

	now := s.Now().UTC()
	link := StoredLink{
		Link: Link{
			Token:     token,
			UserID:    userID,
			Label:     req.Label,
			CreatedAt: now,
		},
		PasswordHash: hash,
	}
	if req.ExpiresInDays > 0 {
		expiresAt := now.AddDate(0, 0, req.ExpiresInDays)
		link.ExpiresAt = &expiresAt
	}

	if err := s.repo.Add(ctx, link); err != nil {
		return nil, err
	}

	return &link.Link, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Link, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.share.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.Delete(ctx, userID, token); err != nil {
		return err
	}
	s.cache.Del([]byte(linkCachePrefix + token))
	return nil
}

// Access checks the link password and issues a viewer token for the link.
func (s *Service) Access(ctx context.Context, token, password string) (_ *ViewerAccess, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.share.access")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	link, err := s.activeLink(ctx, token)
	if err != nil {
		return nil, err
	}
	if !pkg.CheckPasswordHash(password, link.PasswordHash) {
		return nil, ErrWrongPassword
	}

	now := s.Now()
	expiresAt := now.Add(s.viewerTTL)
	if link.ExpiresAt != nil && link.ExpiresAt.Before(expiresAt) {
		expiresAt = *link.ExpiresAt
	}

	claims := viewerClaims{
		ShareToken: link.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   link.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign viewer token: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", link.UserID))
	return &ViewerAccess{
		Token:     signed,
		ExpiresAt: expiresAt,
		Label:     link.Label,
	}, nil
}

// Viewer validates a viewer token issued for shareToken and returns the id of
// the link owner. The link itself must still exist and be active.
func (s *Service) Viewer(ctx context.Context, shareToken, viewerToken string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.share.viewer")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	claims := &viewerClaims{}
	_, err = jwt.ParseWithClaims(
		viewerToken,
		claims,
		func(*jwt.Token) (any, error) {
			return s.jwtSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidViewer, err)
	}
	if claims.ShareToken != shareToken {
		return "", fmt.Errorf("%w: issued for another link", ErrInvalidViewer)
	}

	link, err := s.activeLink(ctx, shareToken)
	if err != nil {
		return "", err
	}
	if link.UserID != claims.Subject {
		return "", fmt.Errorf("%w: owner mismatch", ErrInvalidViewer)
	}

	return link.UserID, nil
}

func (s *Service) activeLink(ctx context.Context, token string) (*StoredLink, error) {
	link, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Expired(s.Now()) {
		return nil, ErrLinkExpired
	}
	return link, nil
}

func (s *Service) lookup(ctx context.Context, token string) (*StoredLink, error) {
	cacheKey := []byte(linkCachePrefix + token)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var link StoredLink
		if err := json.Unmarshal(cached, &link); err == nil {
			return &link, nil
		} else {
			log.Errorf("failed to unmarshal cached share link: %s", err)
		}
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Debugf("get share link from cache: %s", err)
	}

	link, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	linkBytes, err := json.Marshal(link)
	if err != nil {
		log.Errorf("failed to marshal share link for cache: %s", err)
		return link, nil
	}
	if err := s.cache.Set(cacheKey, linkBytes, linkCacheExpire); err != nil {
		log.Errorf("failed to cache share link: %s", err)
	}

	return link, nil
}
