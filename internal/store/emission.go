package store

import (
	"context"
	"fmt"

	"carbonref/internal/model"
)

// Snapshot 在只读事务内读取工作表清单与三张因子表
func (s *Store) Snapshot(ctx context.Context, sheetID int64) (*model.Snapshot, error) {
	tx, err := s.BeginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	items, err := listCostItems(ctx, tx, sheetID)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{SheetID: sheetID, Items: items}
	for _, kind := range model.FactorKinds {
		table, err := loadFactorTable(ctx, tx, kind)
		if err != nil {
			return nil, err
		}
		snap.SetTable(kind, table)
	}

	return snap, nil
}

// QueryEmissionRecords 以 SQL 左连接直接解算工作表碳排放因子
// 未匹配的因子取 0；按 (名称, 三因子) 去重，保留最小 ID 出现的位置
func (s *Store) QueryEmissionRecords(ctx context.Context, sheetID int64) ([]model.EmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT description, labor_factor, material_factor, machine_factor
		FROM (
			SELECT
				e.id,
				e.description,
				COALESCE(l.carbon_factor, '0') AS labor_factor,
				COALESCE(m.carbon_factor, '0') AS material_factor,
				COALESCE(mc.carbon_factor, '0') AS machine_factor
			FROM cost_items e
			LEFT JOIN labor l ON e.code = l.code
			LEFT JOIN material m ON e.code = m.code
			LEFT JOIN machine mc ON e.code = mc.code
			WHERE e.sheet_id = ?
			AND e.code IS NOT NULL
			AND e.code != ''
		)
		GROUP BY description, labor_factor, material_factor, machine_factor
		ORDER BY MIN(id)
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query emission records: %w", err)
	}
	defer rows.Close()

	out := []model.EmissionRecord{}
	for rows.Next() {
		var r model.EmissionRecord
		if err := rows.Scan(&r.Description, &r.LaborFactor, &r.MaterialFactor, &r.MachineFactor); err != nil {
			return nil, fmt.Errorf("failed to scan emission record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emission records: %w", err)
	}
	return out, nil
}
