package store

import (
	"context"
	"fmt"

	"carbonref/internal/model"
)

// Stats 数据概况
type Stats struct {
	Sheets    int                      `json:"sheets"`
	CostItems int                      `json:"costItems"`
	Factors   map[model.FactorKind]int `json:"factors"`
}

// GetStats 统计工作表、清单条目与各因子表条目数
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	st := &Stats{Factors: map[model.FactorKind]int{}}
	if err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(1) FROM sheets), (SELECT COUNT(1) FROM cost_items)
	`).Scan(&st.Sheets, &st.CostItems); err != nil {
		return nil, fmt.Errorf("query stats failed: %w", err)
	}
	for _, kind := range model.FactorKinds {
		n, err := s.CountFactors(ctx, kind)
		if err != nil {
			return nil, err
		}
		st.Factors[kind] = n
	}
	return st, nil
}
