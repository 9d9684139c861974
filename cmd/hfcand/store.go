package main

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/hfcand/blobstore"
	blobminio "github.com/hupe1980/hfcand/blobstore/minio"
	"github.com/hupe1980/hfcand/blobstore/s3"
	"github.com/hupe1980/hfcand/internal/config"
)

func openStore(ctx context.Context, sc config.Store) (blobstore.Store, error) {
	switch sc.Backend {
	case "local":
		return blobstore.NewLocalStore(sc.Dir), nil
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		var opts []s3.Option
		if sc.Prefix != "" {
			opts = append(opts, s3.WithPrefix(sc.Prefix))
		}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}
		if sc.CommitTable != "" {
			opts = append(opts, s3.WithCommitTable(sc.CommitTable))
		}
		return s3.Open(ctx, sc.Bucket, opts...)
	case "minio":
		client, err := minio.New(sc.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
			Secure: sc.Secure,
			Region: sc.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return blobminio.NewStore(client, sc.Bucket, sc.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}
