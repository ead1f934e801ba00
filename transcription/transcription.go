package transcription

import (
	"context"
	"fmt"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/metrics"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/nijaru/yt-transcript/youtube"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLanguage          = "en"
	DefaultSideEffectTimeout = 2 * time.Second
	englishLanguage          = "en"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Provider supplies caption tracks and their segments for a video.
type Provider interface {
	List(ctx context.Context, videoID string) ([]models.Track, error)
	// Fetch returns the first track matching languages in priority order.
	// An empty languages slice means no preference.
	Fetch(ctx context.Context, videoID string, languages []string) (*models.Transcript, error)
}

// Journal records how each transcript lookup was served.
type Journal interface {
	RecordLookup(ctx context.Context, lookup models.Lookup) error
}

// Archive keeps a copy of successful results.
type Archive interface {
	PutTranscript(ctx context.Context, result *models.TranscriptResult) error
}

type Option func(*Service)

// WithSideEffectTimeout bounds each journal and archive write.
func WithSideEffectTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sideEffectTimeout = d
		}
	}
}

func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

func WithArchive(a Archive) Option {
	return func(s *Service) { s.archive = a }
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDefaultLanguage sets the language tried first when a request names none.
func WithDefaultLanguage(code string) Option {
	return func(s *Service) {
		if code != "" {
			s.defaultLanguage = code
		}
	}
}

// Service resolves video input to transcripts. It holds no per-request state
// and never caches: every call goes to the provider.
type Service struct {
	provider        Provider
	journal         Journal
	archive         Archive
	logger          *logrus.Logger
	defaultLanguage string

	sideEffectTimeout time.Duration
}

func NewService(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider:        provider,
		logger:          logrus.StandardLogger(),
		defaultLanguage: DefaultLanguage,

		sideEffectTimeout: DefaultSideEffectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type attempt struct {
	step      string
	languages []string
}

// fallbackPlan lists the attempts for a requested language: the language
// itself, then English, then whatever the provider lists first.
func fallbackPlan(languageCode string) []attempt {
	plan := []attempt{{step: "requested", languages: []string{languageCode}}}
	if languageCode != englishLanguage {
		plan = append(plan, attempt{step: "english", languages: []string{englishLanguage}})
	}
	return append(plan, attempt{step: "any"})
}

// GetTranscript fetches the transcript of the video named by videoInput,
// falling back from languageCode to English and then to any available track.
func (s *Service) GetTranscript(ctx context.Context, videoInput, languageCode string) (*models.TranscriptResult, error) {
	const op = "TranscriptService.GetTranscript"

	videoID := validation.ExtractVideoID(videoInput)
	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "invalid YouTube URL or video ID")
	}
	if languageCode == "" {
		languageCode = s.defaultLanguage
	}

	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"video_id":  videoID,
		"language":  languageCode,
	})

	transcript, err := s.fetchWithFallback(ctx, logger, videoID, languageCode)
	if err != nil {
		appErr := classify(op, videoID, err)
		logger.WithError(err).WithField("kind", appErr.Kind.String()).Info("Transcript lookup failed")
		s.record(ctx, logger, models.Lookup{
			VideoID:           videoID,
			RequestedLanguage: languageCode,
			Outcome:           appErr.Kind.String(),
		})
		return nil, appErr
	}

	if len(transcript.Segments) == 0 {
		s.record(ctx, logger, models.Lookup{
			VideoID:           videoID,
			RequestedLanguage: languageCode,
			LanguageCode:      transcript.Track.LanguageCode,
			Outcome:           errors.KindEmptyTranscript.String(),
		})
		return nil, errors.EmptyTranscript(op, nil, "transcript data is empty")
	}

	result := models.NewTranscriptResult(videoID, transcript)
	logger.WithFields(logrus.Fields{
		"language_code": result.LanguageCode,
		"segments":      len(result.Snippets),
	}).Info("Transcript fetched")

	s.record(ctx, logger, models.Lookup{
		VideoID:           videoID,
		RequestedLanguage: languageCode,
		LanguageCode:      result.LanguageCode,
		Outcome:           outcomeSuccess,
		SegmentCount:      len(result.Snippets),
	})
	s.store(ctx, logger, result)

	return result, nil
}

func (s *Service) fetchWithFallback(ctx context.Context, logger *logrus.Entry, videoID, languageCode string) (*models.Transcript, error) {
	var lastErr error
	for _, a := range fallbackPlan(languageCode) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		transcript, err := s.provider.Fetch(ctx, videoID, a.languages)
		if err == nil {
			metrics.FallbackAttemptsTotal.WithLabelValues(a.step, outcomeSuccess).Inc()
			metrics.ProviderRequestsTotal.WithLabelValues("fetch", outcomeSuccess).Inc()
			return transcript, nil
		}

		metrics.FallbackAttemptsTotal.WithLabelValues(a.step, outcomeFailure).Inc()
		metrics.ProviderRequestsTotal.WithLabelValues("fetch", outcomeFailure).Inc()
		logger.WithError(err).WithFields(logrus.Fields{
			"step":      a.step,
			"languages": a.languages,
		}).Warn("Transcript fetch attempt failed")
		lastErr = err
	}
	return nil, lastErr
}

// classify maps the final provider failure onto a domain error kind.
func classify(op, videoID string, err error) *errors.AppError {
	switch {
	case pkgerrors.Is(err, youtube.ErrTranscriptsDisabled):
		return errors.TranscriptsDisabled(op, err,
			fmt.Sprintf("subtitles are disabled for this video (video ID: %s)", videoID))
	case pkgerrors.Is(err, youtube.ErrNoTranscriptFound),
		pkgerrors.Is(err, youtube.ErrVideoUnavailable),
		pkgerrors.Is(err, youtube.ErrInvalidVideoID):
		return errors.NotFound(op, err,
			fmt.Sprintf("no transcript found for this video (video ID: %s)", videoID))
	default:
		return errors.Upstream(op, err, "unexpected error: "+err.Error())
	}
}

// ListLanguages returns every caption track of the video in provider order.
func (s *Service) ListLanguages(ctx context.Context, videoInput string) (*models.LanguageList, error) {
	const op = "TranscriptService.ListLanguages"

	videoID := validation.ExtractVideoID(videoInput)
	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "invalid YouTube URL or video ID")
	}

	tracks, err := s.provider.List(ctx, videoID)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("list", outcomeFailure).Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"operation": op,
			"video_id":  videoID,
		}).Error("Failed to list transcript languages")
		return nil, errors.Upstream(op, err, err.Error())
	}
	metrics.ProviderRequestsTotal.WithLabelValues("list", outcomeSuccess).Inc()

	if tracks == nil {
		tracks = []models.Track{}
	}
	return &models.LanguageList{VideoID: videoID, Languages: tracks}, nil
}

// sideEffectContext outlives a canceled request but not the side effect budget.
func (s *Service) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
}

func (s *Service) record(ctx context.Context, logger *logrus.Entry, lookup models.Lookup) {
	if s.journal == nil {
		return
	}
	lookup.CreatedAt = time.Now().UTC()

	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.journal.RecordLookup(ctx, lookup); err != nil {
		logger.WithError(err).Warn("Failed to record lookup")
	}
}

func (s *Service) store(ctx context.Context, logger *logrus.Entry, result *models.TranscriptResult) {
	if s.archive == nil {
		return
	}

	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()
	if err := s.archive.PutTranscript(ctx, result); err != nil {
		logger.WithError(err).Warn("Failed to archive transcript")
	}
}
