package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/okravets/linktally/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Validation failures reported by CreateShortLink, each distinct so the
// delivery layer can map them to their own error codes.
var (
	// ErrMissingURL is returned when no original URL was supplied.
	ErrMissingURL = errors.New("missing url")
	// ErrInvalidURL is returned when the original URL is not a syntactically valid absolute URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidShortCode is returned when a custom short code is not 3-10 alphanumeric characters.
	ErrInvalidShortCode = errors.New("invalid short code")
)

const (
	// defaultValidity applies when the caller supplies no validity period.
	defaultValidity = 30 * time.Minute

	// Generated codes are 6 characters drawn uniformly from the lowercase
	// hex alphabet. A collision with an existing code is surfaced to the
	// caller rather than retried.
	codeAlphabet = "0123456789abcdef"
	codeLength   = 6

	urlRule       = "url"
	shortCodeRule = "alphanum,min=3,max=10"
)

// LinkRepository defines the interface for working with short links at the
// business logic layer.
type LinkRepository interface {
	// CreateLink stores a new link together with an empty click history.
	// Returns storage.ErrShortCodeExists if the code is already taken.
	CreateLink(ctx context.Context, shortCode, originalURL string, validity time.Duration) (*models.URL, error)

	// ResolveLink returns the link for a code and records a click for it.
	// Returns storage.ErrLinkNotFound or storage.ErrLinkExpired without
	// recording anything when the link is unknown or past its expiry.
	ResolveLink(ctx context.Context, shortCode string, click models.ClickEvent) (*models.URL, error)

	// LinkStats returns the click history for a code, expired links
	// included. Returns storage.ErrLinkNotFound for unknown codes.
	LinkStats(ctx context.Context, shortCode string) (*models.LinkStats, error)
}

// LinkService provides methods to create, resolve and inspect short links.
// The service uses a LinkRepository interface to interact with the
// underlying store.
type LinkService struct {
	repo     LinkRepository
	validate *validator.Validate
}

// NewLinkService creates a new instance of LinkService backed by the
// provided repository.
func NewLinkService(repo LinkRepository) *LinkService {
	return &LinkService{
		repo:     repo,
		validate: validator.New(),
	}
}

// CreateShortLink validates the original URL and the optional custom code,
// then stores the link under either the custom code or a freshly generated
// one. Validation runs before any mutation, in a fixed order: missing URL,
// invalid URL, invalid custom code, code collision. Generated codes are not
// retried on collision; the conflict is reported to the caller.
//
// A validityMinutes of zero falls back to the 30 minute default. Negative
// values are accepted and produce an immediately expired link.
func (s *LinkService) CreateShortLink(ctx context.Context, originalURL string, validityMinutes int, customCode string) (*models.URL, error) {
	const op = "service.LinkService.CreateShortLink"

	if originalURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingURL)
	}
	if err := s.validate.Var(originalURL, urlRule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	shortCode := customCode
	if shortCode != "" {
		if err := s.validate.Var(shortCode, shortCodeRule); err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidShortCode)
		}
	} else {
		var err error
		shortCode, err = gonanoid.Generate(codeAlphabet, codeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}
	}

	validity := defaultValidity
	if validityMinutes != 0 {
		validity = time.Duration(validityMinutes) * time.Minute
	}

	link, err := s.repo.CreateLink(ctx, shortCode, originalURL, validity)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create short link: %w", op, err)
	}

	return link, nil
}

// ResolveShortCode retrieves the original URL associated with the provided
// short code and records the click against it. Missing click metadata is
// filled with the documented fallbacks before it is stored; the click
// timestamp is assigned by the store.
func (s *LinkService) ResolveShortCode(ctx context.Context, shortCode string, click models.ClickEvent) (*models.URL, error) {
	const op = "service.LinkService.ResolveShortCode"

	link, err := s.repo.ResolveLink(ctx, shortCode, normalizeClick(click))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return link, nil
}

// LinkStats retrieves the click history for the provided short code.
// Expired links keep serving their statistics.
func (s *LinkService) LinkStats(ctx context.Context, shortCode string) (*models.LinkStats, error) {
	const op = "service.LinkService.LinkStats"

	stats, err := s.repo.LinkStats(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link stats: %w", op, err)
	}

	return stats, nil
}

func normalizeClick(click models.ClickEvent) models.ClickEvent {
	if click.UserAgent == "" {
		click.UserAgent = models.DefaultUserAgent
	}
	if click.Referrer == "" {
		click.Referrer = models.DefaultReferrer
	}
	if click.IP == "" {
		click.IP = models.DefaultIP
	}

	return click
}
