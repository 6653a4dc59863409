package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"contentos/internal/utils/logger"
)

var _ AssetStorage = (*S3Service)(nil)

// S3Service stores generated assets in an S3-compatible bucket
// (AWS S3, Cloudflare R2, MinIO).
type S3Service struct {
	client     *s3.Client
	bucketName string
	endpoint   string
	region     string
	isR2       bool
	logger     *logger.Logger
}

func NewS3Service(bucketName, endpoint, region, accessKey, secretKey string, isR2 bool) (*S3Service, error) {
	log := logger.New("s3_service")

	if accessKey == "" || secretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("accessKey or secretKey is empty"))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.%s", region, endpoint))
		}
	})

	// Verify credentials before accepting the config.
	_, err = client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return nil, log.Error("Failed to verify S3 credentials ❌", err)
	}

	log.Success("S3 storage initialized ✅")

	return &S3Service{
		client:     client,
		bucketName: bucketName,
		endpoint:   endpoint,
		region:     region,
		isR2:       isR2,
		logger:     log,
	}, nil
}

// StoreAsset uploads the asset bytes under the given key and returns the
// public URL. Callers are responsible for unique filenames.
func (s *S3Service) StoreAsset(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	s.logger.Info("📤 Uploading asset: %s", filename)

	acl := types.ObjectCannedACLPublicRead
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(data),
		ACL:         acl,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload asset ❌", err)
	}

	var url string
	if s.endpoint != "" {
		url = fmt.Sprintf("https://%s.%s/%s/%s", s.region, s.endpoint, s.bucketName, filename)
	} else {
		url = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, filename)
	}

	s.logger.Success("✅ Asset uploaded: %s", url)
	return url, nil
}

// GetSignedURL generates a short-lived download URL for a stored asset.
func (s *S3Service) GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL ❌", err)
	}

	return presignedURL.URL, nil
}
