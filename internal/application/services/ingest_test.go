package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/infrastructure/antivirus"
	"file-vault-api/internal/infrastructure/mq"
)

func newTestFileService(
	storage *fakeStorage,
	scanner *fakeScanner,
	repo *fakeFileRepo,
	mqFake *fakeMQ,
	maxUploadBytes int64,
) ports.FileService {
	return NewFileService(
		storage,
		scanner,
		repo,
		newFakeSharingRepo(),
		mqFake,
		testCounter(),
		zap.NewNop(),
		maxUploadBytes,
	)
}

func testIdentity() ports.Identity {
	return ports.Identity{UserID: uuid.New()}
}

func drainEvents(mqFake *fakeMQ) []mq.Event {
	var out []mq.Event
	for {
		select {
		case e := <-mqFake.in:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestIngestFileClean(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{version: "27123/Wed Aug 27 08:00:00 2025"}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 1<<20)

	owner := testIdentity()
	rec, err := svc.IngestFile(context.Background(), owner, ports.Upload{
		FileName: "report.pdf",
		MimeType: "application/pdf",
		Body:     strings.NewReader("0123456789"),
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "report.pdf", rec.FileName)
	assert.Equal(t, uint64(10), rec.FileSize)
	assert.Equal(t, owner.UserID, rec.OwnerID)
	assert.False(t, rec.Infected)
	require.NotNil(t, rec.AntivirusDBVersion)
	assert.Equal(t, scanner.version, *rec.AntivirusDBVersion)
	require.NotNil(t, rec.LastScan)

	// storage holds exactly the scanned bytes under the record's key
	require.Contains(t, storage.stored, rec.Key)
	assert.Equal(t, []byte("0123456789"), storage.stored[rec.Key])
	assert.Empty(t, storage.deletedKeys())

	require.Len(t, repo.inserted, 1)

	events := drainEvents(mqFake)
	require.Len(t, events, 1)
	assert.Equal(t, mq.ActionIngested, events[0].Action)
	assert.Equal(t, rec.ID.String(), events[0].FileID)
	assert.Equal(t, "report.pdf", events[0].FileName)
}

func TestIngestFileInfected(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{verdict: antivirus.Verdict{Infected: true, Description: "Eicar-Test-Signature"}}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 1<<20)

	rec, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "virus.bin",
		MimeType: "application/octet-stream",
		Body:     strings.NewReader("malicious payload"),
	})
	require.ErrorIs(t, err, ErrFileInfected)
	assert.Contains(t, err.Error(), "Eicar-Test-Signature")
	assert.Nil(t, rec)

	// no metadata row, the stray object removed before the caller hears back
	assert.Empty(t, repo.inserted)
	assert.Empty(t, storage.stored)
	require.Len(t, storage.deletedKeys(), 1)

	events := drainEvents(mqFake)
	require.Len(t, events, 1)
	assert.Equal(t, mq.ActionRejected, events[0].Action)
	assert.Equal(t, "infected", events[0].Reason)
}

func TestIngestFileTooLarge(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 4)

	rec, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "big.dat",
		MimeType: "application/octet-stream",
		Body:     strings.NewReader("12345678"),
	})
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Nil(t, rec)

	assert.Empty(t, repo.inserted)
	assert.Empty(t, storage.stored)
	require.Len(t, storage.deletedKeys(), 1)

	events := drainEvents(mqFake)
	require.Len(t, events, 1)
	assert.Equal(t, mq.ActionRejected, events[0].Action)
	assert.Equal(t, "too_large", events[0].Reason)
}

func TestIngestFileExactlyAtLimit(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 8)

	rec, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "edge.dat",
		MimeType: "application/octet-stream",
		Body:     strings.NewReader("12345678"),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), rec.FileSize)
	assert.Empty(t, storage.deletedKeys())
}

// a stream that is both oversized and infected is reported as oversized:
// truncation outranks the verdict over bytes the scanner never saw in full
func TestIngestFileTruncationOutranksInfection(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{verdict: antivirus.Verdict{Infected: true, Description: "Eicar-Test-Signature"}}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 4)

	_, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "both.bin",
		MimeType: "application/octet-stream",
		Body:     strings.NewReader("infected and oversized"),
	})
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.NotErrorIs(t, err, ErrFileInfected)

	events := drainEvents(mqFake)
	require.Len(t, events, 1)
	assert.Equal(t, "too_large", events[0].Reason)
}

// the disposition must not depend on which stage settles first
func TestIngestFileStageOrdering(t *testing.T) {
	cases := []struct {
		name     string
		verdict  antivirus.Verdict
		scanLag  time.Duration
		putLag   time.Duration
		wantErr  error
		inserted int
	}{
		{"clean, scan settles first", antivirus.Verdict{}, 0, 30 * time.Millisecond, nil, 1},
		{"clean, upload settles first", antivirus.Verdict{}, 30 * time.Millisecond, 0, nil, 1},
		{"infected, scan settles first", antivirus.Verdict{Infected: true, Description: "x"}, 0, 30 * time.Millisecond, ErrFileInfected, 0},
		{"infected, upload settles first", antivirus.Verdict{Infected: true, Description: "x"}, 30 * time.Millisecond, 0, ErrFileInfected, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := newFakeStorage()
			storage.putDelay = tc.putLag
			scanner := &fakeScanner{verdict: tc.verdict, scanDelay: tc.scanLag}
			repo := newFakeFileRepo()
			mqFake := newFakeMQ()
			svc := newTestFileService(storage, scanner, repo, mqFake, 1<<20)

			_, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
				FileName: "any.txt",
				MimeType: "text/plain",
				Body:     strings.NewReader("content"),
			})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, repo.inserted, tc.inserted)
		})
	}
}

func TestIngestFileUploadFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.putErr = errors.New("bucket gone")
	scanner := &fakeScanner{}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 1<<20)

	rec, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "doc.txt",
		MimeType: "text/plain",
		Body:     strings.NewReader("content"),
	})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, repo.inserted)
	assert.Empty(t, drainEvents(mqFake))
}

func TestIngestFileScanFailure(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{scanErr: errors.New("clamd unreachable")}
	repo := newFakeFileRepo()
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 1<<20)

	rec, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "doc.txt",
		MimeType: "text/plain",
		Body:     strings.NewReader("content"),
	})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, repo.inserted)
	assert.Empty(t, drainEvents(mqFake))
}

func TestIngestFileInsertFailureCleansUpObject(t *testing.T) {
	storage := newFakeStorage()
	scanner := &fakeScanner{}
	repo := newFakeFileRepo()
	repo.insertErr = errors.New("db down")
	mqFake := newFakeMQ()
	svc := newTestFileService(storage, scanner, repo, mqFake, 1<<20)

	_, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
		FileName: "doc.txt",
		MimeType: "text/plain",
		Body:     strings.NewReader("content"),
	})
	require.Error(t, err)
	require.Len(t, storage.deletedKeys(), 1)
	assert.Empty(t, storage.stored)
	assert.Empty(t, drainEvents(mqFake))
}

func TestIngestFileMissingName(t *testing.T) {
	svc := newTestFileService(newFakeStorage(), &fakeScanner{}, newFakeFileRepo(), newFakeMQ(), 1<<20)

	for _, name := range []string{"", "   "} {
		_, err := svc.IngestFile(context.Background(), testIdentity(), ports.Upload{
			FileName: name,
			Body:     strings.NewReader("content"),
		})
		require.ErrorIs(t, err, ErrMissingFileName)
	}
}
