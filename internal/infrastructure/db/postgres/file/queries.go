package file

const (
	SelectFileVisible = `
		SELECT id, key, owner_id, organization_id, file_name, mime_type, file_size, infected, infection_description, antivirus_db_version, last_scan, created_at, deleted, scheduled_deletion_at
		FROM files f
		WHERE f.id = $1 AND f.deleted = false
		  AND (
		    f.owner_id = $2
		    OR ($3::uuid IS NOT NULL AND f.organization_id = $3)
		    OR EXISTS (SELECT 1 FROM files_users fu WHERE fu.file_id = f.id AND fu.user_id = $2)
		  )
	`
	SelectFilesForOwner = `
		SELECT id, key, owner_id, organization_id, file_name, mime_type, file_size, infected, infection_description, antivirus_db_version, last_scan, created_at, deleted, scheduled_deletion_at
		FROM files
		WHERE owner_id = $1 AND deleted = false
		ORDER BY created_at DESC
	`
	SelectFilesForOrganization = `
		SELECT id, key, owner_id, organization_id, file_name, mime_type, file_size, infected, infection_description, antivirus_db_version, last_scan, created_at, deleted, scheduled_deletion_at
		FROM files
		WHERE organization_id = $1 AND deleted = false AND id <> ALL($2)
		ORDER BY created_at DESC
	`
	SelectSharedFiles = `
		SELECT f.id, f.key, f.owner_id, f.organization_id, f.file_name, f.mime_type, f.file_size, f.infected, f.infection_description, f.antivirus_db_version, f.last_scan, f.created_at, f.deleted, f.scheduled_deletion_at
		FROM files f
		JOIN files_users fu ON fu.file_id = f.id
		WHERE fu.user_id = $1 AND f.deleted = false AND f.id <> ALL($2)
		ORDER BY f.created_at DESC
	`
	InsertFile = `
		INSERT INTO files (key, owner_id, organization_id, file_name, mime_type, file_size, infected, infection_description, antivirus_db_version, last_scan)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING
		  id, key, owner_id, organization_id, file_name, mime_type, file_size, infected, infection_description, antivirus_db_version, last_scan, created_at, deleted, scheduled_deletion_at
	`
	SelectFileNameExists = `
		SELECT EXISTS (
		  SELECT 1 FROM files WHERE owner_id = $1 AND file_name = $2 AND deleted = false
		)
	`
	SelectExpiryCandidateIDs = `
		SELECT id FROM files
		WHERE deleted = false AND scheduled_deletion_at IS NULL AND created_at <= $1
	`
	ScheduleFilesForDeletion = `
		UPDATE files
		SET scheduled_deletion_at = $2
		WHERE id = ANY($1) AND deleted = false AND scheduled_deletion_at IS NULL
	`
	SelectExpiredFiles = `
		SELECT id, key, owner_id, organization_id, file_name, mime_type, file_size, infected, infection_description, antivirus_db_version, last_scan, created_at, deleted, scheduled_deletion_at
		FROM files
		WHERE deleted = false AND scheduled_deletion_at IS NOT NULL AND scheduled_deletion_at <= $1
		ORDER BY scheduled_deletion_at ASC
	`
	CountStaleScheduledFiles = `
		SELECT count(*) FROM files
		WHERE deleted = false AND scheduled_deletion_at IS NOT NULL AND scheduled_deletion_at <= $1
	`
	SoftDeleteFiles = `
		UPDATE files
		SET deleted = true
		WHERE id = ANY($1) AND deleted = false
	`
)
