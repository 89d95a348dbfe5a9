// Package storage defines the errors shared by short link storage
// implementations.
package storage

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a new short link with a short code that is already taken, whether
	// the existing link is live or expired. Codes are never recycled.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when an attempt is made to retrieve
	// a short link using a short code that doesn't exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkExpired is returned when a short link is resolved after its
	// expiry time has passed. Expired links stay in storage and keep
	// serving statistics; only redirects are denied.
	ErrLinkExpired = errors.New("link expired")

	// ErrAnalyticsExists and ErrAnalyticsMissing report a divergence
	// between the link registry and the analytics log. The two are
	// created and mutated together under one lock, so either error
	// indicates a defect rather than a caller mistake.
	ErrAnalyticsExists  = errors.New("analytics entry already exists")
	ErrAnalyticsMissing = errors.New("analytics entry missing")
)
