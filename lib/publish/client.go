package publish

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoCredentials is returned when AWS_ACCESS_KEY_ID or
// AWS_SECRET_ACCESS_KEY is unset.
var ErrNoCredentials = errors.New("publish: AWS credentials not set in environment")

// ClientConfig configures NewS3Client.
type ClientConfig struct {
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores such as
	// MinIO or R2. Path-style addressing is used when set.
	Endpoint string
}

// NewS3Client builds an S3 client whose credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN. Region
// falls back to AWS_REGION.
func NewS3Client(cfg ClientConfig) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials(os.LookupEnv)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(lookup func(string) (string, bool)) aws.CredentialsProviderFunc {
	return func(ctx context.Context) (aws.Credentials, error) {
		id, _ := lookup("AWS_ACCESS_KEY_ID")
		secret, _ := lookup("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, ErrNoCredentials
		}
		token, _ := lookup("AWS_SESSION_TOKEN")
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    token,
			Source:          "Environment",
		}, nil
	}
}
