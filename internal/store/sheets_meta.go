package store

import (
	"encoding/json"
	"fmt"

	"carbonref/internal/model"
)

// InsertSheetMeta 写入 Sheet 元信息（用于追溯与容错）
func (s *Store) InsertSheetMeta(meta model.SheetMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO sheets_meta (
			sheet_name, sheet_kind, header_row,
			total_rows, imported_rows,
			columns_json,
			status, error_message,
			import_log_id,
			source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.SheetName, meta.SheetKind, meta.HeaderRow,
		meta.TotalRows, meta.ImportedRows,
		meta.ColumnsJSON,
		meta.Status, meta.ErrorMessage,
		meta.ImportLogID,
		meta.SourceFile,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// BuildColumnsJSON 将列名序列化为 JSON
func BuildColumnsJSON(columns []string) string {
	if len(columns) == 0 {
		return "[]"
	}
	b, err := json.Marshal(columns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
