package store

import (
	"context"
	"sort"
	"sync"

	"carbonref/internal/model"
)

// MemoryStore 内存数据存储（清单 + 人材机因子表）
type MemoryStore struct {
	items   []model.CostItem
	factors map[model.FactorKind]model.FactorTable
	nextID  int64
	mu      sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.resetFactors()
	return s
}

func (s *MemoryStore) resetFactors() {
	s.factors = make(map[model.FactorKind]model.FactorTable, len(model.FactorKinds))
	for _, kind := range model.FactorKinds {
		s.factors[kind] = model.FactorTable{}
	}
}

// AddItem 添加单个清单条目，ID 为 0 时自动分配递增 ID
func (s *MemoryStore) AddItem(item model.CostItem) model.CostItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == 0 {
		s.nextID++
		item.ID = s.nextID
	} else if item.ID > s.nextID {
		s.nextID = item.ID
	}
	s.items = append(s.items, item)
	return item
}

// SetItems 替换全部清单条目
func (s *MemoryStore) SetItems(items []model.CostItem) {
	s.mu.Lock()
	s.items = nil
	s.nextID = 0
	s.mu.Unlock()

	for _, it := range items {
		s.AddItem(it)
	}
}

// SetFactors 替换单张因子表
func (s *MemoryStore) SetFactors(kind model.FactorKind, entries []model.FactorEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factors[kind] = model.NewFactorTable(entries)
}

// Snapshot 复制指定工作表的清单与三张因子表，清单按 ID 升序
func (s *MemoryStore) Snapshot(_ context.Context, sheetID int64) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &model.Snapshot{SheetID: sheetID}
	for _, it := range s.items {
		if it.SheetID == sheetID {
			snap.Items = append(snap.Items, it)
		}
	}
	sort.SliceStable(snap.Items, func(i, j int) bool {
		return snap.Items[i].ID < snap.Items[j].ID
	})

	for _, kind := range model.FactorKinds {
		snap.SetTable(kind, copyTable(s.factors[kind]))
	}
	return snap, nil
}

func copyTable(t model.FactorTable) model.FactorTable {
	out := make(model.FactorTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Count 清单条目数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear 清空所有数据
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextID = 0
	s.resetFactors()
}
