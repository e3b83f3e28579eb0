package sharing

const (
	InsertGrant = `
		INSERT INTO files_users (file_id, user_id)
		VALUES ($1, $2)
	`
	DeleteGrant = `
		DELETE FROM files_users
		WHERE file_id = $1 AND user_id = $2
	`
	SelectGrantsForFile = `
		SELECT file_id, user_id, created_at
		FROM files_users
		WHERE file_id = $1
		ORDER BY created_at ASC
	`
	DeleteGrantsForFiles = `
		DELETE FROM files_users
		WHERE file_id = ANY($1)
	`
)
