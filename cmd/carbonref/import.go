package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"carbonref/internal/importer"
	"carbonref/internal/model"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		appendItems bool
		keepCurrent bool
	)

	cmd := &cobra.Command{
		Use:       "import {costs|factors} <file.xlsx>",
		Short:     "导入造价清单或人材机数据库",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(model.ImportKindCosts), string(model.ImportKindFactors)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.ImportKind(args[0])
			if kind != model.ImportKindCosts && kind != model.ImportKindFactors {
				return fmt.Errorf("未知的导入类型: %q", args[0])
			}

			report, err := importer.NewCoordinator(a.store, a.log).ImportSync(importer.ImportOptions{
				FilePath:           args[1],
				OriginalFilename:   filepath.Base(args[1]),
				Kind:               kind,
				ClearExisting:      !appendItems,
				UpdateCurrentSheet: !keepCurrent,
			})

			out := cmd.OutOrStdout()
			if report != nil {
				for _, s := range report.Sheets {
					fmt.Fprintf(out, "%-10s %-24s %6d 行\n", s.Status, s.SheetName, s.ImportedRows)
				}
				fmt.Fprintf(out, "共 %d 个 Sheet，导入 %d，跳过 %d，失败 %d，%d 行\n",
					report.TotalSheets, report.ImportedSheets, report.SkippedSheets, report.ErrorSheets, report.ImportedRows)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&appendItems, "append", false, "同名工作表追加而不是替换清单")
	cmd.Flags().BoolVar(&keepCurrent, "keep-current", false, "不更新当前工作表")
	return cmd
}
