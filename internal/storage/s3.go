package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"securecollab/internal/domain"
)

const (
	headTimeout     = 30 * time.Second
	transferTimeout = 10 * time.Minute
)

// S3Store хранит блобы в S3-совместимом бакете. Семантика ключей и
// идемпотентность удаления те же, что у LocalStore.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store создает клиента и проверяет доступность бакета
func NewS3Store(conf *S3Config) (*S3Store, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	client := s3.New(s3.Options{
		BaseEndpoint:     aws.String(conf.Endpoint),
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	})

	store := &S3Store{
		client: client,
		bucket: conf.Bucket,
	}

	ctx, cancel := context.WithTimeout(context.Background(), headTimeout)
	defer cancel()

	_, err := store.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return store, nil
}

func (s *S3Store) Put(ctx context.Context, localPath string, ownerID int64) (string, error) {
	storageKey := fmt.Sprintf("user_%d/%s_%s", ownerID, uuid.New().String(), filepath.Base(localPath))

	file, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: source file %s", domain.ErrNotFound, localPath)
		}
		return "", fmt.Errorf("%w: failed to open source: %v", domain.ErrStorage, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload blob to s3: %v", domain.ErrStorage, err)
	}

	return storageKey, nil
}

func (s *S3Store) Get(ctx context.Context, storageKey string, destDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%w: blob %s", domain.ErrNotFound, storageKey)
		}
		return "", fmt.Errorf("%w: failed to get blob from s3: %v", domain.ErrStorage, err)
	}
	defer result.Body.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create destination directory: %v", domain.ErrStorage, err)
	}

	destPath := filepath.Join(destDir, path.Base(storageKey))
	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create destination file: %v", domain.ErrStorage, err)
	}

	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("%w: failed to read blob body: %v", domain.ErrStorage, err)
	}

	if err := out.Close(); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("%w: failed to finalize destination file: %v", domain.ErrStorage, err)
	}

	return destPath, nil
}

func (s *S3Store) Delete(ctx context.Context, storageKey string) error {
	ctx, cancel := context.WithTimeout(ctx, headTimeout)
	defer cancel()

	// Проверяем существование объекта: удаление отсутствующего ключа успешно
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var nf *types.NotFound
		var nsk *types.NoSuchKey
		if errors.As(err, &nf) || errors.As(err, &nsk) {
			return nil
		}
		return fmt.Errorf("%w: failed to check blob existence: %v", domain.ErrStorage, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete blob from s3: %v", domain.ErrStorage, err)
	}

	return nil
}
