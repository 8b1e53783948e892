// Package minio keeps raw copies of imported molecule CSV files in an
// S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
)

const (
	csvContentType = "text/csv"
	connectTimeout = 10 * time.Second
	retentionRule  = "upload-retention"
)

// ObjectAPI is the subset of *minio.Client the archive uses.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive stores uploads under <prefix>/YYYY/MM/DD/<uuid>.csv.
type Archive struct {
	api    ObjectAPI
	cfg    config.StorageConfig
	logger logging.Logger
	now    func() time.Time
}

// NewArchive connects to the object store described by cfg and makes sure
// the bucket exists.
func NewArchive(cfg config.StorageConfig, log logging.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	a, err := NewArchiveWithAPI(ctx, client, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("upload archive connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return a, nil
}

// NewArchiveWithAPI builds an Archive over an existing client.
func NewArchiveWithAPI(ctx context.Context, api ObjectAPI, cfg config.StorageConfig, log logging.Logger) (*Archive, error) {
	a := &Archive{
		api:    api,
		cfg:    cfg,
		logger: log.Named("upload_archive"),
		now:    time.Now,
	}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	a.setupRetention(ctx)
	return a, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	exists, err := a.api.BucketExists(ctx, a.cfg.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket existence").WithDetail(a.cfg.Bucket)
	}
	if exists {
		return nil
	}
	if err := a.api.MakeBucket(ctx, a.cfg.Bucket, minio.MakeBucketOptions{Region: a.cfg.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to create bucket %s", a.cfg.Bucket))
	}
	a.logger.Info("created bucket", logging.String("bucket", a.cfg.Bucket))
	return nil
}

// setupRetention expires archived uploads after RetentionDays.  Zero keeps
// them forever.  Failures are logged, not fatal.
func (a *Archive) setupRetention(ctx context.Context) {
	if a.cfg.RetentionDays <= 0 {
		return
	}
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     retentionRule,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(a.cfg.RetentionDays),
			},
			RuleFilter: lifecycle.Filter{Prefix: a.prefix() + "/"},
		},
	}
	if err := a.api.SetBucketLifecycle(ctx, a.cfg.Bucket, lc); err != nil {
		a.logger.Warn("failed to set bucket lifecycle", logging.String("bucket", a.cfg.Bucket), logging.Err(err))
	}
}

func (a *Archive) prefix() string {
	return strings.Trim(a.cfg.Prefix, "/")
}

// objectKey names a new archive object.
func (a *Archive) objectKey() string {
	return path.Join(a.prefix(), a.now().UTC().Format("2006/01/02"), uuid.New().String()+".csv")
}

// Store streams r into a new object and returns its key.  The size is not
// known up front, so the upload is multipart in PartSize chunks.
func (a *Archive) Store(ctx context.Context, r io.Reader) (string, error) {
	key := a.objectKey()
	info, err := a.api.PutObject(ctx, a.cfg.Bucket, key, r, -1, minio.PutObjectOptions{
		ContentType:  csvContentType,
		PartSize:     a.cfg.PartSize,
		UserMetadata: map[string]string{"source": "molecule-import"},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to archive upload").WithDetail(key)
	}
	a.logger.Debug("upload archived",
		logging.String("bucket", a.cfg.Bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return key, nil
}

// HealthCheck reports whether the archive bucket is reachable.
func (a *Archive) HealthCheck(ctx context.Context) error {
	exists, err := a.api.BucketExists(ctx, a.cfg.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "object storage unreachable")
	}
	if !exists {
		return errors.New(errors.ErrCodeStorageError, "archive bucket missing").WithDetail(a.cfg.Bucket)
	}
	return nil
}

//Personal.AI order the ending
