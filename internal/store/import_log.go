package store

import (
	"context"
	"fmt"

	"carbonref/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(runID string, kind model.ImportKind, filename string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (run_id, kind, filename, file_size, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, runID, kind, filename, fileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, totalSheets, importedSheets, skippedSheets, importedRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			imported_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalSheets, importedSheets, skippedSheets, importedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志（倒序）
func (s *Store) ListImportLogs(ctx context.Context, limit int) ([]model.ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, kind, filename, file_size,
			total_sheets, imported_sheets, skipped_sheets, imported_rows,
			status, error_message, started_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import logs failed: %w", err)
	}
	defer rows.Close()

	var out []model.ImportLog
	for rows.Next() {
		var l model.ImportLog
		if err := rows.Scan(
			&l.ID, &l.RunID, &l.Kind, &l.Filename, &l.FileSize,
			&l.TotalSheets, &l.ImportedSheets, &l.SkippedSheets, &l.ImportedRows,
			&l.Status, &l.ErrorMessage, &l.StartedAt, &l.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan import log failed: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import logs failed: %w", err)
	}
	return out, nil
}
