package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"carbonref/internal/calculator"
	"carbonref/internal/config"
	"carbonref/internal/exporter"
	"carbonref/internal/service/emission"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [sheet-id|sheet-name]",
		Short: "导出工作表碳排放报告 (xlsx)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			sheetID, err := a.lookupSheet(cmd, arg)
			if err != nil {
				return err
			}

			calc := calculator.NewCalculator(emission.NewResolver(a.store, a.log), a.store)
			file, report, err := exporter.NewExporter(calc).Export(cmd.Context(), exporter.ExportOptions{
				SheetID: sheetID,
				Progress: func(p exporter.ProgressEvent) {
					a.log.WithField("percent", p.Percent).Debug(p.Stage)
				},
			})
			if err != nil {
				return err
			}
			defer file.Close()

			if output == "" {
				output = config.GetDataPath(a.cfg, "exports", exporter.BuildFilename(report, time.Now()))
			}
			if err := file.SaveAs(output); err != nil {
				return fmt.Errorf("写入导出文件失败: %w", err)
			}
			abs, _ := filepath.Abs(output)
			fmt.Fprintf(cmd.OutOrStdout(), "已导出: %s\n", abs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件路径 (默认: 数据目录 exports/)")
	return cmd
}
