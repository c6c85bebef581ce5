package tablekit

import (
	"bytes"
	"compress/gzip"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	errorsgo "github.com/segmentio/errors-go"
	"github.com/segmentio/stats/v4"

	"github.com/bigmb/tablekit/pkg/errs"
	"github.com/bigmb/tablekit/pkg/utils"
)

// S3Client is the slice of the S3 API the fetcher needs.
type S3Client interface {
	manager.DownloadAPIClient
}

// fetchS3 downloads an s3://bucket/key object into a temp file and returns
// the local path plus a cleanup func. Objects with a .gz suffix are inflated
// on the way down.
func fetchS3(ctx context.Context, uri string, cfg config) (string, func(), error) {
	bucket, key, err := splitS3URI(uri)
	if err != nil {
		return "", nil, err
	}

	client, err := getS3Client(ctx, cfg)
	if err != nil {
		return "", nil, err
	}
	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = 64 * 1024 * 1024 // 64MB per part
		d.Concurrency = 5
	})

	start := time.Now()
	defer func() { stats.Observe("fetch_download_time", time.Since(start)) }()

	buffer := manager.NewWriteAtBuffer([]byte{})
	compressedSize, err := downloader.Download(ctx, buffer, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if stderrors.As(err, &noSuchKey) {
			// permanent, don't bother retrying
			return "", nil, errs.NotFound("s3 object not found: %s", uri)
		}
		// retryable
		return "", nil, errorsgo.WithTypes(errorsgo.Wrap(err, "get s3 data"), errs.ErrTypeTemporary)
	}

	local := filepath.Join(os.TempDir(), "tablekit", uuid.New().String()+localExt(key))
	if err := utils.EnsureDirForFile(local); err != nil {
		return "", nil, errorsgo.Wrap(err, "create temp dir")
	}
	out, err := os.Create(local)
	if err != nil {
		return "", nil, errorsgo.Wrap(err, "create temp file")
	}
	defer out.Close()
	cleanup := func() { os.Remove(local) }

	var reader io.Reader = bytes.NewReader(buffer.Bytes())
	if strings.HasSuffix(key, ".gz") {
		reader, err = gzip.NewReader(reader)
		if err != nil {
			cleanup()
			return "", nil, errorsgo.Wrap(err, "create gzip reader")
		}
	}
	n, err := io.Copy(out, reader)
	if err != nil {
		cleanup()
		return "", nil, errorsgo.Wrap(err, "copy from s3 to temp file")
	}

	cfg.logger.Log("fetched %{uri}s: %d -> %d bytes", uri, compressedSize, n)
	return local, cleanup, nil
}

// localExt returns the table extension of an s3 key so the downstream
// dispatch still sees .csv, .csv.zip or .parquet after the uuid rename.
func localExt(key string) string {
	name := strings.TrimSuffix(filepath.Base(key), ".gz")
	if strings.HasSuffix(strings.ToLower(name), ".csv.zip") {
		return ".csv.zip"
	}
	return filepath.Ext(name)
}

func splitS3URI(uri string) (bucket string, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	i := strings.IndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", "", errs.BadRequest("malformed s3 uri: %s", uri)
	}
	return rest[:i], rest[i+1:], nil
}

func getS3Client(ctx context.Context, cfg config) (S3Client, error) {
	if cfg.s3Client != nil {
		return cfg.s3Client, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.s3Region), // Empty string will result in the region value being ignored
	)
	if err != nil {
		return nil, errorsgo.Wrap(err, "load aws config")
	}
	return s3.NewFromConfig(awsCfg), nil
}
