package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carbonref/internal/model"
)

// ErrSheetNotFound 工作表不存在
var ErrSheetNotFound = errors.New("sheet not found")

// EnsureSheet 按名称获取工作表 ID，不存在时创建
func (s *Store) EnsureSheet(name string) (id int64, created bool, err error) {
	err = s.db.QueryRow("SELECT id FROM sheets WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to query sheet: %w", err)
	}

	res, err := s.db.Exec("INSERT INTO sheets (name) VALUES (?)", name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert sheet: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get sheet id: %w", err)
	}
	return id, true, nil
}

// GetSheet 按 ID 获取工作表
func (s *Store) GetSheet(ctx context.Context, id int64) (*model.Sheet, error) {
	var sh model.Sheet
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.name, (SELECT COUNT(1) FROM cost_items WHERE sheet_id = s.id)
		FROM sheets s WHERE s.id = ?
	`, id).Scan(&sh.ID, &sh.Name, &sh.ItemCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to query sheet: %w", err)
	}
	return &sh, nil
}

// GetSheetByName 按名称获取工作表
func (s *Store) GetSheetByName(ctx context.Context, name string) (*model.Sheet, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM sheets WHERE name = ?", name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to query sheet: %w", err)
	}
	return s.GetSheet(ctx, id)
}

// ListSheets 按 ID 升序列出所有工作表
func (s *Store) ListSheets(ctx context.Context) ([]model.Sheet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, COUNT(c.id)
		FROM sheets s
		LEFT JOIN cost_items c ON c.sheet_id = s.id
		GROUP BY s.id, s.name
		ORDER BY s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query sheets failed: %w", err)
	}
	defer rows.Close()

	var out []model.Sheet
	for rows.Next() {
		var sh model.Sheet
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.ItemCount); err != nil {
			return nil, fmt.Errorf("scan sheet failed: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheets failed: %w", err)
	}
	return out, nil
}
