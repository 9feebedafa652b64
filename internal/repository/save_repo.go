package repository

import (
	"database/sql"
	"errors"

	"spellstar/internal/database"
)

// SaveRepository stores serialized save records in the save_data key-value table
type SaveRepository struct {
	db *database.DB
}

// NewSaveRepository creates a new save repository
func NewSaveRepository(db *database.DB) *SaveRepository {
	return &SaveRepository{db: db}
}

// Get retrieves a stored value by key. The second return is false when no
// value is stored under the key.
func (r *SaveRepository) Get(key string) (string, bool, error) {
	var value string
	query := `SELECT save_value FROM save_data WHERE save_key = ?`
	err := r.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set updates or inserts a value under a key
func (r *SaveRepository) Set(key, value string) error {
	query := r.db.Dialect.UpsertSaveQuery()
	_, err := r.db.Exec(query, key, value)
	return err
}

// Remove deletes the value stored under a key
func (r *SaveRepository) Remove(key string) error {
	query := `DELETE FROM save_data WHERE save_key = ?`
	_, err := r.db.Exec(query, key)
	return err
}

// Keys lists all stored save keys, used by the backup command
func (r *SaveRepository) Keys() ([]string, error) {
	rows, err := r.db.Query(`SELECT save_key FROM save_data ORDER BY save_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
