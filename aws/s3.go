// Package aws defines functions used to interact with the AWS API
package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	appconfig "webbot/file-api/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const minMultipartSize = 12 << 20

type S3Client struct {
	C      *s3.Client
	Bucket *string
}

func NewS3() (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	if appconfig.CheckBucket() {
		_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
			Bucket: bucket,
		})
		if err != nil {
			var apiErr smithy.APIError

			if errors.As(err, &apiErr) {
				if apiErr.ErrorCode() == "NotFound" {
					return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
				}
			}

			return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
		}
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}

// Put uploads a local file under prefix + its base name. Transport errors
// are swallowed into the boolean and logged, callers decide what a failed
// push means for their record.
func (s *S3Client) Put(ctx context.Context, localPath, prefix string) bool {
	f, err := os.Open(localPath)
	if err != nil {
		zap.L().Error("Failed to open file for upload", zap.String("path", localPath), zap.Error(err))
		return false
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		zap.L().Error("Failed to stat file for upload", zap.String("path", localPath), zap.Error(err))
		return false
	}

	key := prefix + filepath.Base(localPath)

	input := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	}

	if stat.Size() > minMultipartSize {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = u.Upload(ctx, input)
	} else {
		_, err = s.C.PutObject(ctx, input)
	}
	if err != nil {
		zap.L().Error("Failed to upload file to S3", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Get downloads a remote key into localPath, creating any missing parent
// directories first. Same no-raise contract as Put.
func (s *S3Client) Get(ctx context.Context, key, localPath string) bool {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		zap.L().Error("Failed to create download directory", zap.String("path", localPath), zap.Error(err))
		return false
	}

	f, err := os.Create(localPath)
	if err != nil {
		zap.L().Error("Failed to create download file", zap.String("path", localPath), zap.Error(err))
		return false
	}
	defer f.Close()

	d := manager.NewDownloader(s.C)

	_, err = d.Download(ctx, f, &s3.GetObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		zap.L().Error("Failed to download file from S3", zap.String("key", key), zap.Error(err))
		os.Remove(localPath)
		return false
	}

	return true
}

// List returns the object keys under a prefix. Only used diagnostically
func (s *S3Client) List(ctx context.Context, prefix string) []string {
	var keys []string

	p := s3.NewListObjectsV2Paginator(s.C, &s3.ListObjectsV2Input{
		Bucket: s.Bucket,
		Prefix: aws.String(prefix),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			zap.L().Error("Failed to list objects", zap.String("prefix", prefix), zap.Error(err))
			return keys
		}

		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	return keys
}
