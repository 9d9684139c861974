package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hupe1980/hfcand/blobstore"
)

// Store implements blobstore.Store on an S3 bucket.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	upload   UploadConfig
	uploader *manager.Uploader
}

// NewStore creates a store for bucket. rootPrefix is prepended to every
// blob name.
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return NewStoreWithUpload(client, bucket, rootPrefix, DefaultUploadConfig())
}

// NewStoreWithUpload is NewStore with explicit multipart settings.
func NewStoreWithUpload(client Client, bucket, rootPrefix string, cfg UploadConfig) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   rootPrefix,
		upload:   cfg,
		uploader: newUploader(client, cfg),
	}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Open issues a HEAD request and returns a ranged reader handle.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Create starts a streaming multipart upload.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newStreamingWritableBlob(ctx, s.client, s.uploader, s.bucket, s.key(name), s.upload.EnableChecksum), nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putObject(ctx, s.client, s.bucket, s.key(name), data, s.upload.EnableChecksum)
}

// Delete removes the object. S3 does not report missing keys on delete.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns the sorted names below the root prefix that start with
// prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.prefix
	if full != "" && !strings.HasSuffix(full, "/") {
		full += "/"
	}
	return listObjects(ctx, s.client, s.bucket, full+prefix, full)
}

// Option configures Open.
type Option func(*options)

type options struct {
	prefix      string
	region      string
	endpoint    string
	commitTable string
	upload      UploadConfig
}

// WithPrefix sets the root prefix of every blob name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the shared AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the clients at a custom endpoint, for example
// LocalStack. Path-style addressing is enabled.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithCommitTable makes CURRENT a DynamoDB-versioned pointer stored in
// table.
func WithCommitTable(table string) Option {
	return func(o *options) { o.commitTable = table }
}

// WithUploadConfig overrides the multipart settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) { o.upload = cfg }
}

// Open loads the default AWS configuration and returns a Store, or a
// DDBCommitStore when a commit table is configured.
func Open(ctx context.Context, bucket string, optFns ...Option) (blobstore.Store, error) {
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	store := NewStoreWithUpload(client, bucket, o.prefix, o.upload)
	if o.commitTable == "" {
		return store, nil
	}

	ddb := dynamodb.NewFromConfig(cfg, func(do *dynamodb.Options) {
		if o.endpoint != "" {
			do.BaseEndpoint = aws.String(o.endpoint)
		}
	})
	return NewDDBCommitStore(store, ddb, o.commitTable, "s3://"+path.Join(bucket, o.prefix)), nil
}
