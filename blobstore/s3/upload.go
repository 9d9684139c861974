package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"hash/crc32"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/hfcand/blobstore"
)

// UploadConfig tunes multipart uploads.
type UploadConfig struct {
	// PartSize is the multipart part size in bytes.
	PartSize int64
	// Concurrency is the number of parts uploaded in parallel.
	Concurrency int
	// EnableChecksum attaches CRC32C checksums to uploads.
	EnableChecksum bool
	// LeavePartsOnError keeps uploaded parts when an upload fails.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns 8 MiB parts, five in flight, with checksums.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// checksumCRC32C returns the base64 big-endian CRC32C that S3 expects.
func checksumCRC32C(data []byte) string {
	sum := crc32.Checksum(data, castagnoli)
	return base64.StdEncoding.EncodeToString([]byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)})
}

func putObject(ctx context.Context, client Client, bucket, key string, data []byte, checksum bool) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if checksum {
		in.ChecksumCRC32C = aws.String(checksumCRC32C(data))
	}
	_, err := client.PutObject(ctx, in)
	return err
}

// streamingWritableBlob feeds an io.Pipe into the multipart uploader.
type streamingWritableBlob struct {
	pw   *io.PipeWriter
	pr   *io.PipeReader
	done chan error

	closed   atomic.Bool
	closeMu  sync.Mutex
	closeErr error
}

func newStreamingWritableBlob(ctx context.Context, client Client, uploader *manager.Uploader, bucket, key string, checksum bool) *streamingWritableBlob {
	pr, pw := io.Pipe()
	w := &streamingWritableBlob{pw: pw, pr: pr, done: make(chan error, 1)}

	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   pr,
	}
	if checksum {
		in.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	go func() {
		_, err := uploader.Upload(ctx, in)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *streamingWritableBlob) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, blobstore.ErrClosed
	}
	return w.pw.Write(p)
}

// Close finishes the upload and waits for it.
func (w *streamingWritableBlob) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()

	if !w.closed.CompareAndSwap(false, true) {
		return blobstore.ErrClosed
	}
	if err := w.pw.Close(); err != nil {
		w.closeErr = err
		return err
	}
	w.closeErr = <-w.done
	return w.closeErr
}

// Abort cancels the upload. The uploader aborts the multipart upload unless
// LeavePartsOnError is set.
func (w *streamingWritableBlob) Abort() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = w.pw.CloseWithError(context.Canceled)
	<-w.done
	return nil
}

// Sync is a no-op; data is committed on Close.
func (w *streamingWritableBlob) Sync() error { return nil }
