package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/domain/sharing"
)

type FileService struct {
	storage           ports.ObjectStorage
	scanner           ports.Scanner
	fileRepository    domain.Repository
	sharingRepository sharing.Repository
	mq                ports.RabbitMQ
	mCounter          *prometheus.CounterVec
	logger            *zap.Logger
	maxUploadBytes    int64
}

func NewFileService(
	storage ports.ObjectStorage,
	scanner ports.Scanner,
	fileRepository domain.Repository,
	sharingRepository sharing.Repository,
	mq ports.RabbitMQ,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
	maxUploadBytes int64,
) ports.FileService {
	return &FileService{
		storage:           storage,
		scanner:           scanner,
		fileRepository:    fileRepository,
		sharingRepository: sharingRepository,
		mq:                mq,
		mCounter:          mCounter,
		logger:            logger,
		maxUploadBytes:    maxUploadBytes,
	}
}

// FindVisibleFiles merges owned, organization-visible and shared-with result
// sets, de-duplicated by excluding already collected ids from each following
// query.
func (fs *FileService) FindVisibleFiles(ctx context.Context, requester ports.Identity) (domain.FileRecords, error) {
	out, err := fs.fileRepository.FetchForOwner(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}

	collected := make([]domain.ID, 0, len(out))
	for _, fr := range out {
		collected = append(collected, fr.ID)
	}

	if requester.OrganizationID != nil {
		orgFiles, err := fs.fileRepository.FetchForOrganization(ctx, *requester.OrganizationID, collected)
		if err != nil {
			return nil, err
		}
		for _, fr := range orgFiles {
			out = append(out, fr)
			collected = append(collected, fr.ID)
		}
	}

	sharedFiles, err := fs.fileRepository.FetchShared(ctx, requester.UserID, collected)
	if err != nil {
		return nil, err
	}
	out = append(out, sharedFiles...)

	return out, nil
}

func (fs *FileService) FindFileByID(ctx context.Context, requester ports.Identity, fileID domain.ID) (*domain.FileRecord, error) {
	fr, err := fs.fileRepository.FetchByID(ctx, fileID, requester.UserID, requester.OrganizationID)
	if err != nil {
		return nil, err
	}
	if fr == nil {
		return nil, ErrFileNotFound
	}

	return fr, nil
}

func (fs *FileService) ShareFile(ctx context.Context, requester ports.Identity, fileID domain.ID, userID uuid.UUID) error {
	if _, err := fs.FindFileByID(ctx, requester, fileID); err != nil {
		return err
	}

	return fs.sharingRepository.Grant(ctx, fileID, userID)
}

func (fs *FileService) UnshareFile(ctx context.Context, requester ports.Identity, fileID domain.ID, userID uuid.UUID) error {
	if _, err := fs.FindFileByID(ctx, requester, fileID); err != nil {
		return err
	}

	return fs.sharingRepository.Revoke(ctx, fileID, userID)
}

func (fs *FileService) FindFileGrants(ctx context.Context, requester ports.Identity, fileID domain.ID) (sharing.Grants, error) {
	if _, err := fs.FindFileByID(ctx, requester, fileID); err != nil {
		return nil, err
	}

	return fs.sharingRepository.FetchForFile(ctx, fileID)
}
