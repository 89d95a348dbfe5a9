package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/okravets/linktally/internal/models"
	"github.com/okravets/linktally/internal/service"
	"github.com/okravets/linktally/internal/storage"
	"github.com/okravets/linktally/pkg/metrics"
	"github.com/okravets/linktally/pkg/response"
)

// unknownLocation is reported for every click; the service has no
// geolocation capability.
const unknownLocation = "Unknown"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// createLinkRequest represents the request payload for creating a short link.
// Validity is in minutes; zero falls back to the service default. All
// enforcement happens in the service layer so its error taxonomy drives the
// responses.
type createLinkRequest struct {
	URL       string `json:"url"`
	Validity  int    `json:"validity"`
	Shortcode string `json:"shortcode"`
}

type createLinkResponse struct {
	ShortLink string    `json:"shortLink"`
	Expiry    time.Time `json:"expiry"`
}

// clickData is one entry of the statistics payload. Source carries the
// referrer recorded for the click.
type clickData struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	UserAgent string    `json:"userAgent"`
	Location  string    `json:"location"`
}

type linkStatsResponse struct {
	TotalClicks       int64       `json:"totalClicks"`
	OriginalURL       string      `json:"originalUrl"`
	CreationDate      time.Time   `json:"creationDate"`
	ExpiryDate        time.Time   `json:"expiryDate"`
	DetailedClickData []clickData `json:"detailedClickData"`
}

func toLinkStatsResponse(stats *models.LinkStats) linkStatsResponse {
	clicks := make([]clickData, 0, len(stats.Clicks))
	for _, click := range stats.Clicks {
		clicks = append(clicks, clickData{
			Timestamp: click.Timestamp,
			Source:    click.Referrer,
			UserAgent: click.UserAgent,
			Location:  unknownLocation,
		})
	}

	return linkStatsResponse{
		TotalClicks:       stats.TotalClicks,
		OriginalURL:       stats.OriginalURL,
		CreationDate:      stats.CreatedAt,
		ExpiryDate:        stats.ExpiresAt,
		DetailedClickData: clicks,
	}
}

// handleCreateShortLink handles POST requests to create a short link.
//
// An empty request body decodes to the zero request and is rejected by the
// service as a missing URL, so the error taxonomy stays in one place.
func handleCreateShortLink(svc LinkService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleCreateShortLink"

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidRequestBodyResponse)
			return
		}

		link, err := svc.CreateShortLink(r.Context(), req.URL, req.Validity, req.Shortcode)
		if err != nil {
			renderLinkError(w, r, op, err)
			return
		}

		metrics.ShortLinksCreated.Inc()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, createLinkResponse{
			ShortLink: shortLinkFor(baseURL, link.ShortCode),
			Expiry:    link.ExpiresAt,
		})
	}
}

// handleRedirect handles GET requests on a short code and issues the
// redirect to the original URL. Each successful lookup records a click with
// the request's user agent, referrer and client IP; errors are reported as
// JSON and record nothing.
func handleRedirect(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		click := models.ClickEvent{
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
			IP:        clientIP(r),
		}

		link, err := svc.ResolveShortCode(r.Context(), shortCode, click)
		metrics.RedirectsTotal.WithLabelValues(redirectOutcome(err)).Inc()
		if err != nil {
			renderLinkError(w, r, op, err)
			return
		}

		http.Redirect(w, r, link.OriginalURL, http.StatusFound)
	}
}

// handleGetLinkStats handles GET requests for the click statistics of a
// short link. Statistics remain available after the link has expired.
func handleGetLinkStats(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleGetLinkStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		stats, err := svc.LinkStats(r.Context(), shortCode)
		if err != nil {
			renderLinkError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toLinkStatsResponse(stats))
	}
}

// renderLinkError maps the service and storage error taxonomy onto the wire
// contract. Anything unrecognized, including registry/analytics divergence,
// is logged and reported as an internal error.
func renderLinkError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingURL):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.MissingURLResponse)
	case errors.Is(err, service.ErrInvalidURL):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidURLResponse)
	case errors.Is(err, service.ErrInvalidShortCode):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidShortcodeResponse)
	case errors.Is(err, storage.ErrShortCodeExists):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.ShortcodeCollisionResponse)
	case errors.Is(err, storage.ErrLinkNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.NotFoundResponse)
	case errors.Is(err, storage.ErrLinkExpired):
		render.Status(r, http.StatusGone)
		render.JSON(w, r, response.ExpiredLinkResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}

func redirectOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, storage.ErrLinkNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrLinkExpired):
		return "expired"
	default:
		return "error"
	}
}

func shortLinkFor(baseURL, shortCode string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(baseURL, "/"), shortCode)
}

// clientIP extracts the host part of the request's remote address. The
// RealIP middleware has already folded forwarding headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
