package file

import (
	domain "file-vault-api/internal/domain/file"
)

func fromDBModel(model *FileRecord) *domain.FileRecord {
	var fr = &domain.FileRecord{
		ID:  model.ID,
		Key: model.Key,

		OwnerID:        model.OwnerID,
		OrganizationID: model.OrganizationID,

		FileName: model.FileName,
		MimeType: model.MimeType,
		FileSize: model.FileSize,

		Infected:             model.Infected,
		InfectionDescription: model.InfectionDescription,
		AntivirusDBVersion:   model.AntivirusDBVersion,
		LastScan:             model.LastScan,

		CreatedAt:           model.CreatedAt,
		Deleted:             model.Deleted,
		ScheduledDeletionAt: model.ScheduledDeletionAt,
	}

	return fr
}

func fromDBModels(models *FileRecords) domain.FileRecords {
	frs := make(domain.FileRecords, len(*models))
	for idx, m := range *models {
		frs[idx] = fromDBModel(m)
	}

	return frs
}
