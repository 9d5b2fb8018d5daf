package store

import (
	"context"
	"fmt"

	"carbonref/internal/model"
)

// ReplaceFactorTable 清空并重新写入单张人材机因子表
func (s *Store) ReplaceFactorTable(kind model.FactorKind, entries []model.FactorEntry) error {
	return s.ReplaceFactors(map[model.FactorKind][]model.FactorEntry{kind: entries})
}

// ReplaceFactors 在同一事务中清空并重新写入多张因子表
// 编码唯一性由上游校验，此处重复编码会因主键冲突整体回滚
func (s *Store) ReplaceFactors(tables map[model.FactorKind][]model.FactorEntry) error {
	if len(tables) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, kind := range model.FactorKinds {
		entries, ok := tables[kind]
		if !ok {
			continue
		}

		if _, err := tx.Exec("DELETE FROM " + kind.TableName()); err != nil {
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}

		stmt, err := tx.Prepare(fmt.Sprintf(`
			INSERT INTO %s (code, name, specification, unit, carbon_factor)
			VALUES (?, ?, ?, ?, ?)
		`, kind.TableName()))
		if err != nil {
			return fmt.Errorf("failed to prepare %s insert: %w", kind, err)
		}

		for _, e := range entries {
			if _, err := stmt.Exec(e.Code, e.Name, e.Specification, e.Unit, e.Factor.String()); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to insert %s code %q: %w", kind, e.Code, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListFactors 按编码升序列出因子表条目
func (s *Store) ListFactors(ctx context.Context, kind model.FactorKind) ([]model.FactorEntry, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT code, name, specification, unit, carbon_factor
		FROM %s ORDER BY code
	`, kind.TableName()))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	defer rows.Close()

	var out []model.FactorEntry
	for rows.Next() {
		var e model.FactorEntry
		if err := rows.Scan(&e.Code, &e.Name, &e.Specification, &e.Unit, &e.Factor); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", kind, err)
	}
	return out, nil
}

// CountFactors 统计因子表条目数
func (s *Store) CountFactors(ctx context.Context, kind model.FactorKind) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+kind.TableName()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return n, nil
}

func loadFactorTable(ctx context.Context, q queryer, kind model.FactorKind) (model.FactorTable, error) {
	rows, err := q.QueryContext(ctx, "SELECT code, carbon_factor FROM "+kind.TableName())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	defer rows.Close()

	table := model.FactorTable{}
	for rows.Next() {
		var e model.FactorEntry
		if err := rows.Scan(&e.Code, &e.Factor); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		table[e.Code] = e.Factor
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", kind, err)
	}
	return table, nil
}
