package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-vault-api/config"
	"file-vault-api/internal/application/ports"
	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/settings"
	"file-vault-api/internal/domain/sharing"
	"file-vault-api/internal/infrastructure/mq"
	"file-vault-api/internal/infrastructure/scheduler"
)

const (
	// TokenSettingKey holds the shared secret authenticating inbound expiry
	// webhook calls.
	TokenSettingKey = "scheduler_webhook_token"

	// deletionBatchCap bounds the blast radius of a single run; the excess is
	// deferred to the next trigger.
	deletionBatchCap = 100

	staleScheduledAfter = 3 * 24 * time.Hour
)

type CleanupService struct {
	storage            ports.ObjectStorage
	fileRepository     domain.Repository
	sharingRepository  sharing.Repository
	settingsRepository settings.Repository
	schedulerClient    ports.SchedulerClient
	mq                 ports.RabbitMQ
	mCounter           *prometheus.CounterVec
	logger             *zap.Logger

	retention     time.Duration
	deletionTTL   time.Duration
	rearmInterval time.Duration
	webhookURL    string
}

func NewCleanupService(
	storage ports.ObjectStorage,
	fileRepository domain.Repository,
	sharingRepository sharing.Repository,
	settingsRepository settings.Repository,
	schedulerClient ports.SchedulerClient,
	mqPort ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
	schedCfg config.Scheduler,
	limits config.Limits,
) ports.CleanupService {
	return &CleanupService{
		storage:            storage,
		fileRepository:     fileRepository,
		sharingRepository:  sharingRepository,
		settingsRepository: settingsRepository,
		schedulerClient:    schedulerClient,
		mq:                 mqPort,
		mCounter:           mCounter,
		logger:             logger,
		retention:          limits.Retention,
		deletionTTL:        limits.DeletionTTL,
		rearmInterval:      schedCfg.RearmInterval,
		webhookURL:         schedCfg.WebhookURL,
	}
}

func (cs *CleanupService) VerifyToken(ctx context.Context, token string) (bool, error) {
	entry, err := cs.settingsRepository.Fetch(ctx, TokenSettingKey)
	if err != nil {
		return false, err
	}
	if entry == nil || token == "" {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(entry.Value), []byte(token)) == 1, nil
}

func (cs *CleanupService) EnsureWebhookToken(ctx context.Context) (string, error) {
	entry, err := cs.settingsRepository.Fetch(ctx, TokenSettingKey)
	if err != nil {
		return "", err
	}
	if entry != nil {
		return entry.Value, nil
	}

	token := uuid.NewString()
	if err = cs.settingsRepository.Upsert(ctx, settings.Entry{
		Key:         TokenSettingKey,
		Value:       token,
		Type:        settings.TypeString,
		Description: "authenticates inbound expiry webhook calls",
	}); err != nil {
		return "", err
	}

	cs.logger.Info("expiry webhook token generated, arm the first scheduler trigger manually")

	return token, nil
}

// Run executes one expiry pass. A record is only ever marked deleted after
// its storage key was confirmed removed: metadata and storage stay in sync by
// ordering, not by a cross-system transaction.
func (cs *CleanupService) Run(ctx context.Context, now time.Time) error {
	// 1. promote newly-eligible records
	candidates, err := cs.fileRepository.FetchExpiryCandidateIDs(ctx, now, cs.retention)
	if err != nil {
		return err
	}
	if err = cs.fileRepository.MarkScheduledForDeletion(ctx, candidates, now.Add(cs.deletionTTL)); err != nil {
		return err
	}
	if len(candidates) > 0 {
		cs.logger.Info("files scheduled for deletion", zap.Int("count", len(candidates)))
	}

	// 2. re-arm the next trigger; failures are logged, the next trigger is
	// the retry mechanism
	cs.rearm(ctx, now)

	// 3. fetch expired, cap the batch
	expired, err := cs.fileRepository.FetchExpired(ctx, now)
	if err != nil {
		return err
	}
	if len(expired) > deletionBatchCap {
		cs.logger.Info("expired files beyond batch cap deferred to next run",
			zap.Int("deferred", len(expired)-deletionBatchCap))
		expired = expired[:deletionBatchCap]
	}

	// 4. operational visibility for records stuck in scheduled state
	stale, err := cs.fileRepository.CountStaleScheduled(ctx, now.Add(-staleScheduledAfter))
	if err != nil {
		return err
	}
	if stale > 0 {
		cs.logger.Warn("files scheduled for deletion for over three days", zap.Int64("count", stale))
	}

	if len(expired) == 0 {
		return nil
	}

	// 5. one batched storage delete, per-key failures isolated
	keys := make([]string, len(expired))
	byKey := make(map[string]*domain.FileRecord, len(expired))
	for i, fr := range expired {
		keys[i] = fr.Key
		byKey[fr.Key] = fr
	}

	succeeded, failed := cs.storage.DeleteMany(ctx, keys)
	for key, kerr := range failed {
		cs.logger.Error("storage delete failed, record kept", zap.String("key", key), zap.Error(kerr))
	}

	// 6. mark deleted only what storage confirmed gone
	confirmed := make([]domain.ID, 0, len(succeeded))
	for _, key := range succeeded {
		confirmed = append(confirmed, byKey[key].ID)
	}
	if err = cs.fileRepository.MarkDeleted(ctx, confirmed); err != nil {
		return err
	}
	if err = cs.sharingRepository.RevokeAllForFiles(ctx, confirmed); err != nil {
		return err
	}

	for _, key := range succeeded {
		fr := byKey[key]
		cs.mq.GetInputChan() <- mq.Event{
			Id:       uuid.New(),
			TS:       time.Now(),
			Action:   mq.ActionDeleted,
			FileID:   fr.ID.String(),
			OwnerID:  fr.OwnerID.String(),
			FileName: fr.FileName,
		}
	}
	cs.mCounter.WithLabelValues("files_expired_deleted_total").Add(float64(len(confirmed)))

	cs.logger.Info("expiry run finished",
		zap.Int("deleted", len(confirmed)),
		zap.Int("failed", len(failed)),
	)

	return nil
}

func (cs *CleanupService) rearm(ctx context.Context, now time.Time) {
	entry, err := cs.settingsRepository.Fetch(ctx, TokenSettingKey)
	if err != nil || entry == nil {
		cs.logger.Error("cannot re-arm scheduler without webhook token", zap.Error(err))
		return
	}

	task := scheduler.Task{
		WebhookURL:  cs.webhookURL,
		WebhookAuth: entry.Value,
		ExecuteAt:   now.Add(cs.rearmInterval),
	}
	if err = cs.schedulerClient.Submit(ctx, []scheduler.Task{task}); err != nil {
		cs.logger.Error("scheduler re-arm failed", zap.Error(err))
	}
}
