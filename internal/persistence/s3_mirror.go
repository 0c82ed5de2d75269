package persistence

import (
	"admission/internal/persistence/interfaces"
	"admission/internal/structures"
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies every backup file to an object storage bucket.
type S3Mirror struct {
	client putObjectAPI
	bucket string
	prefix string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewBackupMirror(conf *structures.Config) (interfaces.MirrorInterface, error) {
	s3conf := conf.Backup.S3
	if !s3conf.Enabled {
		return &noopMirror{}, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(s3conf.Region)}
	if s3conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s3conf.AccessKey, s3conf.SecretKey, "",
		)))
	}

	cfg, err := loadDefaultAWSConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s3conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3conf.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Mirror{client: client, bucket: s3conf.Bucket, prefix: s3conf.Prefix}, nil
}

func (m *S3Mirror) key(name string) string {
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

func (m *S3Mirror) Upload(ctx context.Context, name string, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", m.bucket, m.key(name), err)
	}
	return nil
}

type noopMirror struct{}

func (n *noopMirror) Upload(_ context.Context, _ string, _ []byte) error { return nil }
