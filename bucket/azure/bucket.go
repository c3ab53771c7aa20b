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


package azure

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/xultaeculcis/astrotools/blake"
	"github.com/xultaeculcis/astrotools/bucket"
	"github.com/xultaeculcis/astrotools/bucket/config"
	"go.uber.org/zap"
)

const digestMetadataKey = "blake2b"

type blobAPI interface {
	NewListBlobsFlatPager(containerName string, o *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

type Client struct {
	lgr       *zap.SugaredLogger
	blobSvc   blobAPI
	container string
}

var _ bucket.Client = (*Client)(nil)

// NewAzureClient returns a client for an Azure Storage account authorized
// with the account's shared key. Without an explicit endpoint the public
// blob service URL of the account is used.
func NewAzureClient(lgr *zap.SugaredLogger, cfg *config.Config) (*Client, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, err
	}
	serviceURL := serviceURL(cfg)
	blobSvc, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, err
	}
	lgr.Debugw("bucket_client_created", "container", cfg.Container, "service_url", serviceURL)
	return newClient(lgr, blobSvc, cfg.Container), nil
}

func serviceURL(cfg *config.Config) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
}

func newClient(lgr *zap.SugaredLogger, blobSvc blobAPI, container string) *Client {
	return &Client{
		lgr:       lgr,
		blobSvc:   blobSvc,
		container: container,
	}
}

func (c *Client) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pager := c.blobSvc.NewListBlobsFlatPager(c.container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(prefix),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, transferError("list", prefix, err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	c.lgr.Debugw("bucket_list_done", "prefix", prefix, "objects", len(names))
	return names, nil
}

// PutObject uploads data as a block blob carrying its MD5 as the stored
// Content-MD5 and its BLAKE2b digest as blob metadata.
func (c *Client) PutObject(ctx context.Context, name string, data []byte) error {
	md5Sum := md5.Sum(data)
	options := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentMD5: md5Sum[:],
		},
		Metadata: map[string]*string{
			digestMetadataKey: to.Ptr(blake.Sum(data).URLSafe()),
		},
	}
	if _, err := c.blobSvc.UploadBuffer(ctx, c.container, name, data, options); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return transferError("put", name, err)
	}
	return nil
}

func transferError(op, key string, err error) error {
	te := &bucket.TransferError{Op: op, Key: key, Err: err}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		te.Code = respErr.ErrorCode
	}
	te.MissingContainer = bloberror.HasCode(err, bloberror.ContainerNotFound)
	return te
}
