package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
)

// SpacesConfig describes an S3 bucket or an S3-compatible one such as
// DigitalOcean Spaces. An empty Endpoint selects AWS.
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	Prefix    string
}

// SpacesClient writes transcript results to object storage. Objects are
// never read back by the service.
type SpacesClient struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*SpacesClient, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &SpacesClient{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// ObjectKey is the key a result is stored under:
// {prefix}/{video_id}/{language_code}.json.
func (s *SpacesClient) ObjectKey(videoID, languageCode string) string {
	return path.Join(s.prefix, videoID, languageCode+".json")
}

// PutTranscript overwrites the stored copy of result.
func (s *SpacesClient) PutTranscript(ctx context.Context, result *models.TranscriptResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "marshal transcript")
	}

	key := s.ObjectKey(result.VideoID, result.LanguageCode)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "put object %s", key)
	}
	return nil
}
