// Copyright 2026 xultaeculcis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aws

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xultaeculcis/astrotools/blake"
	"github.com/xultaeculcis/astrotools/bucket"
	"github.com/xultaeculcis/astrotools/bucket/config"
	"go.uber.org/zap"
)

const digestMetadataKey = "blake2b"

type s3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Client struct {
	lgr       *zap.SugaredLogger
	s3Svc     s3API
	container string
}

var _ bucket.Client = (*Client)(nil)

// NewAWSClient returns a client for an S3-compatible store. A custom
// endpoint switches to path-style addressing.
func NewAWSClient(ctx context.Context, lgr *zap.SugaredLogger, cfg *config.Config) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = config.DefaultRegion
	}
	awsConf, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccountName, cfg.AccountKey, "")),
	)
	if err != nil {
		return nil, err
	}
	s3Svc := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	lgr.Debugw("bucket_client_created", "container", cfg.Container, "region", region, "endpoint", cfg.Endpoint)
	return newClient(lgr, s3Svc, cfg.Container), nil
}

func newClient(lgr *zap.SugaredLogger, s3Svc s3API, container string) *Client {
	return &Client{
		lgr:       lgr,
		s3Svc:     s3Svc,
		container: container,
	}
}

func (c *Client) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.container),
		Prefix: aws.String(prefix),
	}
	var names []string
	paginator := s3.NewListObjectsV2Paginator(c.s3Svc, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, transferError("list", prefix, err)
		}
		for _, object := range page.Contents {
			names = append(names, aws.ToString(object.Key))
		}
	}
	c.lgr.Debugw("bucket_list_done", "prefix", prefix, "objects", len(names))
	return names, nil
}

// PutObject uploads data in one request with its MD5 for server-side
// integrity checking and its BLAKE2b digest as object metadata.
func (c *Client) PutObject(ctx context.Context, name string, data []byte) error {
	md5Sum := md5.Sum(data)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.container),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentMD5:    aws.String(base64.StdEncoding.EncodeToString(md5Sum[:])),
		Metadata: map[string]string{
			digestMetadataKey: blake.Sum(data).URLSafe(),
		},
	}
	if _, err := c.s3Svc.PutObject(ctx, input); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return transferError("put", name, err)
	}
	return nil
}
