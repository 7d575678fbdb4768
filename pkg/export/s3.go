package export

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Sink writes exports to an S3-compatible endpoint. The host comes from the
// application's configuration, so the client is built per call with that host
// as endpoint override, path-style addressing for minio-style deployments.
type S3Sink struct {
	region    string
	accessKey string
	secretKey string
	log       *zap.SugaredLogger
}

func NewS3Sink(region, accessKey, secretKey string, log *zap.SugaredLogger) *S3Sink {
	if region == "" {
		region = "eu-west-1"
	}
	return &S3Sink{region: region, accessKey: accessKey, secretKey: secretKey, log: log}
}

func (s *S3Sink) Put(ctx context.Context, host, bucket, key string, payload []byte) error {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.region)}
	if s.accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKey, s.secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(host)
		o.UsePathStyle = true
	})
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	if err == nil {
		s.log.Debugw("export stored", "bucket", bucket, "key", key, "bytes", len(payload))
	}
	return err
}
