package settings

const (
	UpsertSetting = `
		INSERT INTO settings (key, value, type, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    type = EXCLUDED.type,
		    description = EXCLUDED.description,
		    updated_at = now()
	`
	SelectSetting = `
		SELECT key, value, type, description, updated_at
		FROM settings
		WHERE key = $1
	`
)
