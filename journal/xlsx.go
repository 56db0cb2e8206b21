package journal

import (
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	submissionsSheet = "Submissions"
	summarySheet     = "Summary"
)

// WriteXLSX exports submissions to an Excel workbook with a per-state
// summary sheet.
func WriteXLSX(subs []Submission, path string) error {
	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), submissionsSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	headStyle, err := fx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeRow(fx, submissionsSheet, 1, toCells(csvHeader)); err != nil {
		return err
	}
	if err := styleHeader(fx, submissionsSheet, len(csvHeader), headStyle); err != nil {
		return err
	}

	counts := map[string]int{}
	for i, s := range subs {
		if err := writeRow(fx, submissionsSheet, i+2, toCells(csvRow(s))); err != nil {
			return err
		}
		counts[s.State]++
	}

	if err := writeRow(fx, summarySheet, 1, []any{"State", "Count"}); err != nil {
		return err
	}
	if err := styleHeader(fx, summarySheet, 2, headStyle); err != nil {
		return err
	}
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	sort.Strings(states)
	for i, s := range states {
		if err := writeRow(fx, summarySheet, i+2, []any{s, counts[s]}); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func writeRow(fx *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return fx.SetSheetRow(sheet, cell, &values)
}

func styleHeader(fx *excelize.File, sheet string, cols int, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return fx.SetCellStyle(sheet, "A1", last, style)
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
