package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"carbonref/internal/calculator"
	"carbonref/internal/model"
	"carbonref/internal/service/emission"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		report bool
		viaSQL bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [sheet-id|sheet-name]",
		Short: "解算工作表的人材机碳排放因子",
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

			resolver := emission.NewResolver(a.store, a.log)
			out := cmd.OutOrStdout()

			if report {
				r, err := calculator.NewCalculator(resolver, a.store).Report(cmd.Context(), sheetID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, r)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "编码\t名称及规格\t数量\t人工\t材料\t机械\t合计\t指标")
				for _, it := range r.Items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						it.Code, it.Description, it.Quantity,
						calculator.FormatEmission(it.LaborEmission),
						calculator.FormatEmission(it.MaterialEmission),
						calculator.FormatEmission(it.MachineEmission),
						calculator.FormatEmission(it.TotalEmission),
						calculator.FormatIndex(it.CarbonIndex))
				}
				fmt.Fprintf(tw, "\t合计\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.TotalQuantity.String(),
					calculator.FormatEmission(r.LaborEmission),
					calculator.FormatEmission(r.MaterialEmission),
					calculator.FormatEmission(r.MachineEmission),
					calculator.FormatEmission(r.TotalEmission),
					calculator.FormatIndex(r.CarbonIndex))
				return tw.Flush()
			}

			var records []model.EmissionRecord
			if viaSQL {
				records, err = a.store.QueryEmissionRecords(cmd.Context(), sheetID)
			} else {
				records, err = resolver.Resolve(cmd.Context(), sheetID)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, records)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "名称及规格\t人工因子\t材料因子\t机械因子")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Description, r.LaborFactor, r.MaterialFactor, r.MachineFactor)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	cmd.Flags().BoolVar(&report, "report", false, "输出含数量与排放量的明细汇总")
	cmd.Flags().BoolVar(&viaSQL, "sql", false, "直接以 SQL 左连接解算")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
