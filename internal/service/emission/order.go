package emission

import (
	"sort"

	"carbonref/internal/model"
)

// orderedItems 按 ID 升序返回清单副本，已有序时直接返回原切片
func orderedItems(items []model.CostItem) []model.CostItem {
	if sort.SliceIsSorted(items, func(i, j int) bool { return items[i].ID < items[j].ID }) {
		return items
	}
	sorted := make([]model.CostItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
