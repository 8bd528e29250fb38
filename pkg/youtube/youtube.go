package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidURL is returned when no canonical video id can be extracted.
var ErrInvalidURL = errors.New("invalid youtube url")

// videoIDPattern matches the URL shapes that carry a video id:
// youtu.be/<id>, /v/<id>, /u/<digit>/<id>, /embed/<id>, watch?v=<id>, &v=<id>.
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|/v/|/u/\d/|/embed/|watch\?v=|&v=)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)

// ExtractVideoID parses an arbitrary YouTube URL into the canonical
// 11-character video id. Pure, no I/O.
func ExtractVideoID(raw string) (string, error) {
	match := videoIDPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return match[1], nil
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaceholderTitle is the fallback title when the oEmbed lookup fails.
func PlaceholderTitle(videoID string) string {
	return "Video: " + videoID
}

const oembedEndpoint = "https://www.youtube.com/oembed"

// MetadataClient fetches best-effort video metadata via the oEmbed endpoint.
type MetadataClient struct {
	client   *http.Client
	endpoint string
}

func NewMetadataClient() *MetadataClient {
	return &MetadataClient{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: oembedEndpoint,
	}
}

// NewMetadataClientWithEndpoint is used by tests to point at a local server.
func NewMetadataClientWithEndpoint(client *http.Client, endpoint string) *MetadataClient {
	return &MetadataClient{client: client, endpoint: endpoint}
}

// FetchTitle looks up the video title. Any failure (network, non-2xx status,
// missing field) degrades to the placeholder title; record creation must never
// block on this lookup.
func (m *MetadataClient) FetchTitle(ctx context.Context, videoID string) string {
	fallback := PlaceholderTitle(videoID)

	ou, err := url.Parse(m.endpoint)
	if err != nil {
		return fallback
	}
	q := ou.Query()
	q.Set("format", "json")
	q.Set("url", WatchURL(videoID))
	ou.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ou.String(), nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("video_id", videoID).Msg("oembed lookup failed, using placeholder title")
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zerolog.Ctx(ctx).Warn().Int("status", resp.StatusCode).Str("video_id", videoID).Msg("oembed lookup failed, using placeholder title")
		return fallback
	}

	var out struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Title == "" {
		return fallback
	}
	return out.Title
}
