package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"

	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/settings"
	"file-vault-api/internal/domain/sharing"
	"file-vault-api/internal/infrastructure/antivirus"
	"file-vault-api/internal/infrastructure/mq"
	"file-vault-api/internal/infrastructure/scheduler"
)

// testCounter avoids promauto's default registry, which would panic on
// duplicate registration across tests.
func testCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_counters"},
		[]string{"result"})
}

type fakeStorage struct {
	mu sync.Mutex

	putDelay   time.Duration
	putErr     error
	stored     map[string][]byte
	deleted    []string
	failDelete map[string]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{stored: make(map[string][]byte)}
}

func (f *fakeStorage) GetBucket() string { return "test-bucket" }

func (f *fakeStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if f.putErr != nil {
		return 0, f.putErr
	}
	time.Sleep(f.putDelay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[key] = b
	return int64(len(b)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.stored, key)
	return nil
}

func (f *fakeStorage) DeleteMany(ctx context.Context, keys []string) (succeeded []string, failed map[string]error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	failed = make(map[string]error)
	for _, k := range keys {
		if err, bad := f.failDelete[k]; bad {
			failed[k] = err
			continue
		}
		f.deleted = append(f.deleted, k)
		delete(f.stored, k)
		succeeded = append(succeeded, k)
	}
	return succeeded, failed
}

func (f *fakeStorage) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

type fakeScanner struct {
	verdict   antivirus.Verdict
	scanErr   error
	scanDelay time.Duration
	version   string
}

func (f *fakeScanner) Scan(ctx context.Context, r io.Reader) (antivirus.Verdict, error) {
	// the scan stage drives the tee, so the stream must be consumed fully
	if _, err := io.Copy(io.Discard, r); err != nil {
		return antivirus.Verdict{}, err
	}
	if f.scanErr != nil {
		return antivirus.Verdict{}, f.scanErr
	}
	time.Sleep(f.scanDelay)
	return f.verdict, nil
}

func (f *fakeScanner) Version(ctx context.Context) (string, error) {
	return f.version, nil
}

type fakeFileRepo struct {
	mu sync.Mutex

	existing  map[string]bool // owner-scoped names in use
	existsErr error

	inserted  []*domain.FileRecord
	insertErr error

	records []*domain.FileRecord // backing rows for the cleanup flow

	markScheduledCalls int
	markDeletedIDs     [][]domain.ID
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{existing: make(map[string]bool)}
}

func (f *fakeFileRepo) Insert(ctx context.Context, rec *domain.FileRecord) (*domain.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	out := *rec
	out.ID = uuid.New()
	out.CreatedAt = time.Now().UTC()
	f.inserted = append(f.inserted, &out)
	return &out, nil
}

func (f *fakeFileRepo) FetchByID(ctx context.Context, fileID domain.ID, requesterID uuid.UUID, organizationID *uuid.UUID) (*domain.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range append(f.records, f.inserted...) {
		if r.ID != fileID || r.Deleted {
			continue
		}
		if r.OwnerID == requesterID {
			return r, nil
		}
		if r.OrganizationID != nil && organizationID != nil && *r.OrganizationID == *organizationID {
			return r, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (f *fakeFileRepo) FetchForOwner(ctx context.Context, ownerID uuid.UUID) (domain.FileRecords, error) {
	var out domain.FileRecords
	for _, r := range f.records {
		if r.OwnerID == ownerID && !r.Deleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFileRepo) FetchForOrganization(ctx context.Context, organizationID uuid.UUID, excludeIDs []domain.ID) (domain.FileRecords, error) {
	var out domain.FileRecords
	for _, r := range f.records {
		if r.OrganizationID != nil && *r.OrganizationID == organizationID && !r.Deleted && !containsID(excludeIDs, r.ID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFileRepo) FetchShared(ctx context.Context, userID uuid.UUID, excludeIDs []domain.ID) (domain.FileRecords, error) {
	return nil, nil
}

func (f *fakeFileRepo) ExistsForOwner(ctx context.Context, ownerID uuid.UUID, fileName string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[fileName], nil
}

func (f *fakeFileRepo) FetchExpiryCandidateIDs(ctx context.Context, now time.Time, retention time.Duration) ([]domain.ID, error) {
	var ids []domain.ID
	for _, r := range f.records {
		if !r.Deleted && r.ScheduledDeletionAt == nil && !r.CreatedAt.After(now.Add(-retention)) {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (f *fakeFileRepo) MarkScheduledForDeletion(ctx context.Context, ids []domain.ID, deleteAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markScheduledCalls++
	for _, r := range f.records {
		if containsID(ids, r.ID) && !r.Deleted && r.ScheduledDeletionAt == nil {
			at := deleteAt
			r.ScheduledDeletionAt = &at
		}
	}
	return nil
}

func (f *fakeFileRepo) FetchExpired(ctx context.Context, now time.Time) (domain.FileRecords, error) {
	var out domain.FileRecords
	for _, r := range f.records {
		if !r.Deleted && r.ScheduledDeletionAt != nil && !r.ScheduledDeletionAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFileRepo) CountStaleScheduled(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for _, r := range f.records {
		if !r.Deleted && r.ScheduledDeletionAt != nil && !r.ScheduledDeletionAt.After(olderThan) {
			n++
		}
	}
	return n, nil
}

func (f *fakeFileRepo) MarkDeleted(ctx context.Context, ids []domain.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markDeletedIDs = append(f.markDeletedIDs, ids)
	for _, r := range f.records {
		if containsID(ids, r.ID) {
			r.Deleted = true
		}
	}
	return nil
}

func containsID(ids []domain.ID, id domain.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

type fakeSharingRepo struct {
	mu      sync.Mutex
	grants  map[uuid.UUID][]uuid.UUID
	revoked []uuid.UUID
}

func newFakeSharingRepo() *fakeSharingRepo {
	return &fakeSharingRepo{grants: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *fakeSharingRepo) Grant(ctx context.Context, fileID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.grants[fileID] {
		if u == userID {
			return nil
		}
	}
	f.grants[fileID] = append(f.grants[fileID], userID)
	return nil
}

func (f *fakeSharingRepo) Revoke(ctx context.Context, fileID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.grants[fileID]
	for i, u := range users {
		if u == userID {
			f.grants[fileID] = append(users[:i], users[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeSharingRepo) FetchForFile(ctx context.Context, fileID uuid.UUID) (sharing.Grants, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var gs sharing.Grants
	for _, u := range f.grants[fileID] {
		gs = append(gs, &sharing.Grant{FileID: fileID, UserID: u})
	}
	return gs, nil
}

func (f *fakeSharingRepo) RevokeAllForFiles(ctx context.Context, fileIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range fileIDs {
		delete(f.grants, id)
		f.revoked = append(f.revoked, id)
	}
	return nil
}

type fakeSettingsRepo struct {
	mu      sync.Mutex
	entries map[string]settings.Entry
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{entries: make(map[string]settings.Entry)}
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, e settings.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.UpdatedAt = time.Now().UTC()
	f.entries[e.Key] = e
	return nil
}

func (f *fakeSettingsRepo) Fetch(ctx context.Context, key string) (*settings.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

type fakeSchedulerClient struct {
	mu        sync.Mutex
	submitted [][]scheduler.Task
	submitErr error
}

func (f *fakeSchedulerClient) Submit(ctx context.Context, tasks []scheduler.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, tasks)
	return f.submitErr
}

type fakeMQ struct {
	in chan mq.Event
}

func newFakeMQ() *fakeMQ {
	return &fakeMQ{in: make(chan mq.Event, 128)}
}

func (f *fakeMQ) Connect(ctx context.Context, dsn string) error { return nil }
func (f *fakeMQ) Init() error                                   { return nil }
func (f *fakeMQ) PublisherWorker(ctx context.Context)           {}
func (f *fakeMQ) GetInputChan() chan mq.Event                   { return f.in }
func (f *fakeMQ) GetConn() *amqp091.Connection                  { return nil }
