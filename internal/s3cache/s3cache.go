// Package s3cache stores fetched schedule pages in S3 so repeated runs and
// redeploys do not hammer venue sites. It satisfies httpcache.Cache.
//
// Adapted from the s3cache package in github.com/mikeb26/boylstonchessclub-tdbot,
// itself derived from s3cache, Copyright (c) 2013 The s3cache AUTHORS.
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "pages"

// ObjectAPI the subset of the S3 client the cache needs
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Cache httpcache.Cache backed by an S3 bucket; entries are gzipped
type Cache struct {
	client ObjectAPI
	bucket string
	ctx    context.Context
	logger *logrus.Logger
}

// New wraps an existing client (tests pass a fake)
func New(ctx context.Context, client ObjectAPI, bucket string, logger *logrus.Logger) *Cache {
	return &Cache{client: client, bucket: bucket, ctx: ctx, logger: logger}
}

// Open loads the default AWS credential chain and checks the bucket is reachable
func Open(ctx context.Context, bucket string, logger *logrus.Logger) (*Cache, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("head bucket %s: %w", bucket, err)
	}
	return New(ctx, client, bucket, logger), nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	objKey := objectKey(key)
	resp, err := c.client.GetObject(c.ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objKey),
	})
	if err != nil {
		var apiErr smithy.APIError
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			c.logger.WithError(err).WithField("key", objKey).Warn("s3cache get failed")
		}
		return nil, false
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		c.logger.WithError(err).WithField("key", objKey).Warn("s3cache entry not gzip")
		return nil, false
	}
	defer gz.Close()
	data, err := io.ReadAll(gz)
	if err != nil {
		c.logger.WithError(err).WithField("key", objKey).Warn("s3cache read failed")
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(key string, data []byte) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		c.logger.WithError(err).Warn("s3cache gzip failed")
		return
	}
	if err := gw.Close(); err != nil {
		c.logger.WithError(err).Warn("s3cache gzip close failed")
		return
	}
	objKey := objectKey(key)
	if _, err := c.client.PutObject(c.ctx, &s3.PutObjectInput{
		Bucket:          aws.String(c.bucket),
		Key:             aws.String(objKey),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentEncoding: aws.String("gzip"),
	}); err != nil {
		c.logger.WithError(err).WithField("key", objKey).Warn("s3cache put failed")
	}
}

func (c *Cache) Delete(key string) {
	objKey := objectKey(key)
	if _, err := c.client.DeleteObject(c.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objKey),
	}); err != nil {
		c.logger.WithError(err).WithField("key", objKey).Warn("s3cache delete failed")
	}
}

func objectKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s/%s.gz", keyPrefix, hex.EncodeToString(sum[:]))
}
