package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const currentSessionKey = "current_session"

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// CurrentSession returns the id of the session the CLI and TUI operate on by
// default. ok is false when none has been chosen yet.
func (s *Store) CurrentSession() (id int64, ok bool, err error) {
	v, err := s.GetSetting(currentSessionKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s setting %q: %w", currentSessionKey, v, err)
	}
	return id, true, nil
}

func (s *Store) SetCurrentSession(id int64) error {
	if _, err := s.GetSession(id); err != nil {
		return err
	}
	return s.SetSetting(currentSessionKey, strconv.FormatInt(id, 10))
}
