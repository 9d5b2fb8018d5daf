package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const configKeyCurrentSheet = "current_sheet_id"

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("config key not found: %s", key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigInt64 获取整数配置项
func (s *Store) GetConfigInt64(key string) (int64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// GetCurrentSheetID 获取当前选中的工作表
func (s *Store) GetCurrentSheetID() (int64, error) {
	id, err := s.GetConfigInt64(configKeyCurrentSheet)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s: %w", configKeyCurrentSheet, err)
	}
	return id, nil
}

// SetCurrentSheetID 设置当前选中的工作表
func (s *Store) SetCurrentSheetID(id int64) error {
	return s.SetConfig(configKeyCurrentSheet, strconv.FormatInt(id, 10))
}
