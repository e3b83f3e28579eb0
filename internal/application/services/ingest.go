package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/infrastructure/antivirus"
	"file-vault-api/internal/infrastructure/mq"
)

type (
	scanSignal struct {
		verdict antivirus.Verdict
		err     error
	}
	uploadSignal struct {
		size int64
		err  error
	}
)

// capReader passes through at most limit bytes and flags whether the source
// held more. The flag is written once, before EOF is surfaced downstream.
type capReader struct {
	r         io.Reader
	remaining int64
	truncated bool
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		// probe a single byte so overflow is distinguishable from a stream
		// that ended exactly at the limit
		var b [1]byte
		for {
			n, err := c.r.Read(b[:])
			if n > 0 {
				c.truncated = true
				return 0, io.EOF
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return 0, io.EOF
				}
				return 0, err
			}
		}
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

// IngestFile relays the inbound stream through the antivirus scanner and into
// object storage in series: the scan stage sits between source and storage
// sink, so storage receives exactly the bytes that were scanned, in order.
// Both stages report through one-shot channels consumed by a join barrier;
// the final disposition is rendered once, priority truncation > infection >
// success, and the first error from either leg wins.
func (fs *FileService) IngestFile(ctx context.Context, owner ports.Identity, up ports.Upload) (*domain.FileRecord, error) {
	if strings.TrimSpace(up.FileName) == "" {
		return nil, ErrMissingFileName
	}

	name := sanitizeFileName(up.FileName)
	resolved, err := resolveFileName(ctx, fs.fileRepository, owner.UserID, name)
	if err != nil {
		return nil, err
	}
	key := genStorageKey(resolved, up.MimeType, owner.UserID)

	src := &capReader{r: up.Body, remaining: fs.maxUploadBytes}
	pr, pw := io.Pipe()

	scanCh := make(chan scanSignal, 1)
	uploadCh := make(chan uploadSignal, 1)

	go func() {
		size, err := fs.storage.Put(ctx, key, pr, up.MimeType)
		if err != nil {
			// unblock the scan leg still writing into the pipe
			pr.CloseWithError(err)
		}
		uploadCh <- uploadSignal{size: size, err: err}
	}()

	go func() {
		verdict, err := fs.scanner.Scan(ctx, io.TeeReader(src, pw))
		if err != nil {
			pw.CloseWithError(err)
		} else {
			pw.Close()
		}
		scanCh <- scanSignal{verdict: verdict, err: err}
	}()

	var scan *scanSignal
	var upload *uploadSignal
	var firstErr error
	for (scan == nil || upload == nil) && firstErr == nil {
		select {
		case s := <-scanCh:
			scan = &s
			firstErr = s.err
		case u := <-uploadCh:
			upload = &u
			firstErr = u.err
		}
	}

	if firstErr != nil {
		// not guaranteed by contract, but cheap to try
		fs.deleteBestEffort(ctx, key)
		return nil, firstErr
	}

	if src.truncated {
		if err = fs.storage.Delete(ctx, key); err != nil {
			fs.logger.Error("delete of oversized object failed", zap.String("key", key), zap.Error(err))
		}
		fs.publishRejected(owner, resolved, "too_large")
		fs.mCounter.WithLabelValues("files_rejected_too_large_total").Inc()
		return nil, ErrFileTooLarge
	}

	if scan.verdict.Infected {
		if err = fs.storage.Delete(ctx, key); err != nil {
			fs.logger.Error("delete of infected object failed", zap.String("key", key), zap.Error(err))
		}
		fs.publishRejected(owner, resolved, "infected")
		fs.mCounter.WithLabelValues("files_rejected_infected_total").Inc()
		return nil, fmt.Errorf("%w: %s", ErrFileInfected, scan.verdict.Description)
	}

	now := time.Now().UTC()
	rec := &domain.FileRecord{
		Key:            key,
		OwnerID:        owner.UserID,
		OrganizationID: owner.OrganizationID,
		FileName:       resolved,
		MimeType:       up.MimeType,
		FileSize:       uint64(upload.size),
		Infected:       false,
		LastScan:       &now,
	}
	if v, verr := fs.scanner.Version(ctx); verr == nil && v != "" {
		rec.AntivirusDBVersion = &v
	}

	out, err := fs.fileRepository.Insert(ctx, rec)
	if err != nil {
		fs.deleteBestEffort(ctx, key)
		return nil, err
	}

	fs.mq.GetInputChan() <- mq.Event{
		Id:       uuid.New(),
		TS:       time.Now(),
		Action:   mq.ActionIngested,
		FileID:   out.ID.String(),
		OwnerID:  out.OwnerID.String(),
		FileName: out.FileName,
	}
	fs.mCounter.WithLabelValues("files_ingested_total").Inc()

	return out, nil
}

func (fs *FileService) deleteBestEffort(ctx context.Context, key string) {
	if err := fs.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		fs.logger.Warn("best-effort cleanup failed", zap.String("key", key), zap.Error(err))
	}
}

func (fs *FileService) publishRejected(owner ports.Identity, fileName, reason string) {
	fs.mq.GetInputChan() <- mq.Event{
		Id:       uuid.New(),
		TS:       time.Now(),
		Action:   mq.ActionRejected,
		OwnerID:  owner.UserID.String(),
		FileName: fileName,
		Reason:   reason,
	}
}
