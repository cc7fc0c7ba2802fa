// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend stores media in a single public S3-compatible bucket. It is
// configured for path-style access so CEPH and Hetzner endpoints work.
type S3Backend struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for served files
}

// NewS3 creates an S3 storage backend with static credentials and
// path-style addressing. Returns (nil, nil) if endpoint or credentials
// are empty, allowing the app to start without object storage.
func NewS3(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3Backend, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3Backend{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores an object with public-read ACL so it can be served directly.
func (b *S3Backend) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := b.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// Delete removes an object from the bucket.
func (b *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for an object. Uses the configured public
// URL if set, otherwise builds a path-style URL from the endpoint.
func (b *S3Backend) FileURL(key string) string {
	if b.publicURL != "" {
		return b.publicURL + "/" + key
	}
	return b.endpoint + "/" + b.bucket + "/" + key
}
