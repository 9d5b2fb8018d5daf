package store

import (
	"context"
	"database/sql"
	"fmt"

	"carbonref/internal/model"
)

// BatchInsertCostItems 批量插入清单条目，ID 按插入顺序递增
func (s *Store) BatchInsertCostItems(sheetID int64, items []model.CostItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertCostItems(tx, sheetID, items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceCostItems 在同一事务中清空工作表清单并写入新条目，失败时保留原数据
func (s *Store) ReplaceCostItems(sheetID int64, items []model.CostItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cost_items WHERE sheet_id = ?", sheetID); err != nil {
		return fmt.Errorf("failed to delete cost items: %w", err)
	}
	if err := insertCostItems(tx, sheetID, items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertCostItems(tx *sql.Tx, sheetID int64, items []model.CostItem) error {
	if len(items) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cost_items (
			sheet_id, seq, code, description, unit,
			quantity, market_price, total, row_no
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		var code sql.NullString
		if it.Code != nil {
			code = sql.NullString{String: *it.Code, Valid: true}
		}
		if _, err := stmt.Exec(
			sheetID, it.Seq, code, it.Description, it.Unit,
			it.Quantity, it.MarketPrice, it.Total, it.RowNo,
		); err != nil {
			return fmt.Errorf("failed to insert cost item: %w", err)
		}
	}
	return nil
}

// ListCostItems 按 ID 升序读取工作表下的清单条目
func (s *Store) ListCostItems(ctx context.Context, sheetID int64) ([]model.CostItem, error) {
	return listCostItems(ctx, s.db, sheetID)
}

func listCostItems(ctx context.Context, q queryer, sheetID int64) ([]model.CostItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, sheet_id, seq, code, description, unit,
			quantity, market_price, total, row_no
		FROM cost_items
		WHERE sheet_id = ?
		ORDER BY id
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost items: %w", err)
	}
	defer rows.Close()

	var out []model.CostItem
	for rows.Next() {
		var it model.CostItem
		var code sql.NullString
		if err := rows.Scan(
			&it.ID, &it.SheetID, &it.Seq, &code, &it.Description, &it.Unit,
			&it.Quantity, &it.MarketPrice, &it.Total, &it.RowNo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cost item: %w", err)
		}
		if code.Valid {
			it.Code = model.StrPtr(code.String)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cost items: %w", err)
	}
	return out, nil
}
