package file

import (
	domainFile "file-vault-api/internal/domain/file"
	domainSharing "file-vault-api/internal/domain/sharing"
)

func ToResponseFileRecord(fDomain domainFile.FileRecord) FileRecord {
	var fr = FileRecord{
		ID:                  fDomain.ID,
		FileName:            fDomain.FileName,
		MimeType:            fDomain.MimeType,
		FileSize:            fDomain.FileSize,
		CreatedAt:           fDomain.CreatedAt,
		ScheduledDeletionAt: fDomain.ScheduledDeletionAt,
	}

	return fr
}

func ToResponseFileRecords(fDomain domainFile.FileRecords) FileRecords {
	frs := make(FileRecords, len(fDomain))
	for idx, f := range fDomain {
		frs[idx] = ToResponseFileRecord(*f)
	}

	return frs
}

func ToResponseGrant(gDomain domainSharing.Grant) Grant {
	return Grant{
		FileID:    gDomain.FileID,
		UserID:    gDomain.UserID,
		CreatedAt: gDomain.CreatedAt,
	}
}

func ToResponseGrants(gDomain domainSharing.Grants) Grants {
	gs := make(Grants, len(gDomain))
	for idx, g := range gDomain {
		gs[idx] = ToResponseGrant(*g)
	}

	return gs
}
