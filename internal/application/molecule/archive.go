package molecule

import (
	"context"
	"io"
	"time"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
)

// UploadArchive keeps a raw copy of every imported CSV.
type UploadArchive interface {
	Store(ctx context.Context, r io.Reader) (string, error)
}

// archivingService copies the CSV stream of ImportCSV into an UploadArchive
// while the import reads it.  Archiving is best effort: a failed copy is
// logged and never changes the import result.
type archivingService struct {
	Service
	archive UploadArchive
	logger  logging.Logger
}

// WithArchive decorates svc so that imports are archived.  A nil archive
// returns svc unchanged.
func WithArchive(svc Service, archive UploadArchive, logger logging.Logger) Service {
	if archive == nil {
		return svc
	}
	return &archivingService{Service: svc, archive: archive, logger: logger.Named("upload_archive")}
}

type archiveResult struct {
	key string
	err error
}

func (s *archivingService) ImportCSV(ctx context.Context, r io.Reader, validate bool) (int64, error) {
	start := time.Now()
	pr, pw := io.Pipe()
	done := make(chan archiveResult, 1)
	go func() {
		key, err := s.archive.Store(ctx, pr)
		// Unblocks the writer if Store returned before reading everything.
		pr.CloseWithError(err)
		done <- archiveResult{key: key, err: err}
	}()

	tee := &detachableWriter{w: pw}
	added, importErr := s.Service.ImportCSV(ctx, io.TeeReader(r, tee), validate)

	// A rejected import stops reading early; the archive still gets the whole file.
	var readErr error
	if !tee.detached() {
		_, readErr = io.Copy(tee, r)
	}
	pw.CloseWithError(readErr)

	res := <-done
	switch {
	case res.err != nil:
		s.logger.Warn("upload archive failed", logging.Err(res.err))
	case readErr != nil:
		s.logger.Warn("upload archive incomplete", logging.String("key", res.key), logging.Err(readErr))
	default:
		s.logger.Info("upload archived",
			logging.String("key", res.key),
			logging.Bool("validate", validate),
			logging.Bool("import_failed", importErr != nil),
			logging.Duration("elapsed", time.Since(start)))
	}
	return added, importErr
}

// detachableWriter forwards writes until the first error and then
// silently drops them, so a failing archive never fails the reader it tees.
type detachableWriter struct {
	w   io.Writer
	err error
}

func (d *detachableWriter) Write(p []byte) (int, error) {
	if d.err == nil {
		_, d.err = d.w.Write(p)
	}
	return len(p), nil
}

func (d *detachableWriter) detached() bool { return d.err != nil }

//Personal.AI order the ending
