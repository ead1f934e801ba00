package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://www.youtube.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	maxPageSize     = 6 * 1024 * 1024
	maxResponseSize = 3 * 1024 * 1024
)

var (
	apiKeyRe       = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentValueRe = regexp.MustCompile(`name="v" value="(.*?)"`)
)

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	AcceptLanguage string
	UserAgent      string
	// RequestsPerSecond throttles outgoing requests; 0 disables throttling.
	RequestsPerSecond float64
	Logger            *logrus.Logger
}

// Client fetches caption tracks and their timed text from YouTube. It is safe
// for concurrent use; nothing is cached between calls.
type Client struct {
	baseURL        *url.URL
	acceptLanguage string
	userAgent      string
	http           *http.Client
	limiter        *rate.Limiter
	logger         *logrus.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = "en-US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	c := &Client{
		baseURL:        base,
		acceptLanguage: cfg.AcceptLanguage,
		userAgent:      cfg.UserAgent,
		http:           &http.Client{Timeout: cfg.Timeout, Jar: jar},
		logger:         cfg.Logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// List returns the caption tracks of a video in listing order.
func (c *Client) List(ctx context.Context, videoID string) ([]models.Track, error) {
	list, err := c.TranscriptList(ctx, videoID)
	if err != nil {
		return nil, err
	}

	all := list.All()
	tracks := make([]models.Track, len(all))
	for i, t := range all {
		tracks[i] = t.Model()
	}
	return tracks, nil
}

// Fetch returns the segments of the first track matching languages, in
// priority order. With no languages the first listed track is used.
func (c *Client) Fetch(ctx context.Context, videoID string, languages []string) (*models.Transcript, error) {
	list, err := c.TranscriptList(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var track *Track
	if len(languages) == 0 {
		all := list.All()
		if len(all) == 0 {
			return nil, errors.Wrapf(ErrNoTranscriptFound, "video %s has no caption tracks", videoID)
		}
		track = all[0]
	} else if track, err = list.Find(languages...); err != nil {
		return nil, err
	}

	segments, err := c.FetchTrack(ctx, track)
	if err != nil {
		return nil, err
	}
	return &models.Transcript{VideoID: videoID, Track: track.Model(), Segments: segments}, nil
}

// TranscriptList resolves the caption tracks of a video through the watch page
// and the Innertube player endpoint.
func (c *Client) TranscriptList(ctx context.Context, videoID string) (*TranscriptList, error) {
	page, err := c.fetchVideoHTML(ctx, videoID)
	if err != nil {
		return nil, err
	}

	apiKey, err := extractAPIKey(page, videoID)
	if err != nil {
		return nil, err
	}

	data, err := c.postJSON(ctx, c.endpoint(innertubePlayerURL+url.QueryEscape(apiKey)), innertubeReq{
		Context: innertubeCtx{Client: innertubeClient{
			ClientName:    androidClientName,
			ClientVersion: androidVersion,
		}},
		VideoID: videoID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "innertube player for video %s", videoID)
	}

	var player playerResp
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, errors.Wrapf(ErrDataUnparsable, "video %s: decode player response: %v", videoID, err)
	}

	if err := assertPlayability(player.PlayabilityStatus, videoID); err != nil {
		return nil, err
	}

	if player.Captions == nil || player.Captions.Renderer == nil || player.Captions.Renderer.CaptionTracks == nil {
		return nil, errors.Wrapf(ErrTranscriptsDisabled, "video %s", videoID)
	}

	list := newTranscriptList(videoID, player.Captions.Renderer)
	c.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"tracks":   len(list.All()),
	}).Debug("Resolved caption tracks")
	return list, nil
}

// FetchTrack downloads and parses the timed text of a track.
func (c *Client) FetchTrack(ctx context.Context, t *Track) ([]models.Segment, error) {
	if strings.Contains(t.url, "&exp=xpe") {
		return nil, errors.Wrapf(ErrPoTokenRequired, "video %s, language %s", t.VideoID, t.LanguageCode)
	}

	data, err := c.get(ctx, t.url, maxResponseSize)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch timedtext for video %s", t.VideoID)
	}

	segments, err := parseTimedText(data)
	if err != nil {
		return nil, errors.Wrapf(err, "video %s, language %s", t.VideoID, t.LanguageCode)
	}
	return segments, nil
}

func (c *Client) fetchVideoHTML(ctx context.Context, videoID string) (string, error) {
	page, err := c.fetchHTML(ctx, videoID)
	if err != nil {
		return "", err
	}

	if strings.Contains(page, consentFormMarker) {
		if err := c.createConsentCookie(page, videoID); err != nil {
			return "", err
		}
		if page, err = c.fetchHTML(ctx, videoID); err != nil {
			return "", err
		}
		if strings.Contains(page, consentFormMarker) {
			return "", errors.Wrapf(ErrConsentCookie, "video %s", videoID)
		}
	}
	return page, nil
}

func (c *Client) fetchHTML(ctx context.Context, videoID string) (string, error) {
	data, err := c.get(ctx, c.endpoint(watchPath+url.QueryEscape(videoID)), maxPageSize)
	if err != nil {
		return "", errors.Wrapf(err, "watch page for video %s", videoID)
	}
	return html.UnescapeString(string(data)), nil
}

func (c *Client) createConsentCookie(page, videoID string) error {
	m := consentValueRe.FindStringSubmatch(page)
	if len(m) < 2 {
		return errors.Wrapf(ErrConsentCookie, "video %s", videoID)
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  "CONSENT",
		Value: "YES+" + m[1],
		Path:  "/",
	}})
	return nil
}

func extractAPIKey(page, videoID string) (string, error) {
	if m := apiKeyRe.FindStringSubmatch(page); len(m) == 2 {
		return m[1], nil
	}
	if strings.Contains(page, recaptchaMarker) {
		return "", errors.Wrapf(ErrRequestBlocked, "video %s: captcha challenge", videoID)
	}
	return "", errors.Wrapf(ErrDataUnparsable, "video %s: innertube API key not found", videoID)
}

func assertPlayability(status *playabilityStatus, videoID string) error {
	if status == nil || status.Status == "" || status.Status == playabilityOK {
		return nil
	}

	switch {
	case status.Status == playabilityLoginRequired && status.Reason == reasonBotDetected:
		return errors.Wrapf(ErrRequestBlocked, "video %s", videoID)
	case status.Status == playabilityLoginRequired && status.Reason == reasonAgeRestricted:
		return errors.Wrapf(ErrAgeRestricted, "video %s", videoID)
	case status.Status == playabilityError && status.Reason == reasonVideoUnavailable:
		if strings.HasPrefix(videoID, "http://") || strings.HasPrefix(videoID, "https://") {
			return errors.Wrapf(ErrInvalidVideoID, "video %s", videoID)
		}
		return errors.Wrapf(ErrVideoUnavailable, "video %s", videoID)
	}

	reason := status.Reason
	if sub := status.ErrorScreen.PlayerErrorMessageRenderer.Subreason.allRuns(); len(sub) > 0 {
		reason += " (" + strings.Join(sub, " ") + ")"
	}
	return errors.Wrapf(ErrVideoUnplayable, "video %s: %s", videoID, reason)
}

func (c *Client) endpoint(pathAndQuery string) string {
	return c.baseURL.String() + pathAndQuery
}

func (c *Client) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, limit)
}

func (c *Client) postJSON(ctx context.Context, rawURL string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, maxResponseSize)
}

func (c *Client) do(req *http.Request, limit int64) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", c.acceptLanguage)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRequestBlocked
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.Redacted()}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
