// Package emission 按编码将造价清单与人材机三张碳排放因子表左连接，
// 生成去重、有序的碳排放因子解算结果。
package emission

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"carbonref/internal/model"
)

// ErrStorageUnavailable 清单或因子表无法读取
var ErrStorageUnavailable = errors.New("emission: storage unavailable")

// Source 解算所需的只读数据源
// 实现必须保证返回的快照来自同一一致性视图
type Source interface {
	Snapshot(ctx context.Context, sheetID int64) (*model.Snapshot, error)
}

// Resolver 碳排放因子解算器
type Resolver struct {
	source Source
	log    logrus.FieldLogger
}

// NewResolver 创建解算器，log 为空时使用标准 logger
func NewResolver(source Source, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{source: source, log: log}
}

// Resolve 解算指定工作表的碳排放因子
func (r *Resolver) Resolve(ctx context.Context, sheetID int64) ([]model.EmissionRecord, error) {
	snap, err := r.snapshot(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	records := ResolveSnapshot(snap)
	r.log.WithFields(logrus.Fields{
		"sheet_id": sheetID,
		"items":    len(snap.Items),
		"records":  len(records),
	}).Debug("emission records resolved")
	return records, nil
}

// ResolveItems 解算指定工作表的清单明细（含数量），排放量由 calculator 计算
func (r *Resolver) ResolveItems(ctx context.Context, sheetID int64) ([]model.ItemEmission, error) {
	snap, err := r.snapshot(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return ResolveItemsSnapshot(snap), nil
}

func (r *Resolver) snapshot(ctx context.Context, sheetID int64) (*model.Snapshot, error) {
	snap, err := r.source.Snapshot(ctx, sheetID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"sheet_id": sheetID,
			"error":    err,
		}).Error("failed to read emission snapshot")
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if snap == nil {
		return &model.Snapshot{SheetID: sheetID}, nil
	}
	return snap, nil
}

// ResolveSnapshot 对快照做左连接解算
// 编码为空的条目被排除；未匹配的因子为 0；按 (名称, 三因子) 去重，保留首次出现；
// 输出顺序为首次出现条目的 ID 升序。
func ResolveSnapshot(snap *model.Snapshot) []model.EmissionRecord {
	items := orderedItems(snap.Items)

	out := make([]model.EmissionRecord, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !it.HasCode() {
			continue
		}
		code := it.CodeValue()
		rec := model.EmissionRecord{
			Description:    it.Description,
			LaborFactor:    snap.Labor.Lookup(code),
			MaterialFactor: snap.Material.Lookup(code),
			MachineFactor:  snap.Machine.Lookup(code),
		}
		key := rec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// ResolveItemsSnapshot 与 ResolveSnapshot 相同的连接语义，保留序号、编码、单位与数量
func ResolveItemsSnapshot(snap *model.Snapshot) []model.ItemEmission {
	items := orderedItems(snap.Items)

	out := make([]model.ItemEmission, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !it.HasCode() {
			continue
		}
		code := it.CodeValue()
		e := model.ItemEmission{
			ItemID:         it.ID,
			Seq:            it.Seq,
			Code:           code,
			Description:    it.Description,
			Unit:           it.Unit,
			Quantity:       it.Quantity,
			LaborFactor:    snap.Labor.Lookup(code),
			MaterialFactor: snap.Material.Lookup(code),
			MachineFactor:  snap.Machine.Lookup(code),
		}
		key := e.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
