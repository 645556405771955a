package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"marketplace-backend/internal/domains/settlement/model"
	"marketplace-backend/internal/domains/settlement/repository"
)

// Exporter renders settlement aggregates as downloadable spreadsheets for
// the operations team.
type Exporter struct {
	settlements repository.RepositoryInterface
}

func NewExporter(settlements repository.RepositoryInterface) *Exporter {
	return &Exporter{settlements: settlements}
}

// ExportMonthly builds one workbook with every brand's monthly aggregate for
// the given period. Returns model.ErrNoSettlementData when the period has no
// rows.
func (e *Exporter) ExportMonthly(ctx context.Context, year, month int) (*excelize.File, error) {
	monthlies, err := e.settlements.ListMonthlyByPeriod(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly settlements: %w", err)
	}
	if len(monthlies) == 0 {
		return nil, model.ErrNoSettlementData
	}

	f, err := e.buildMonthlyFile(year, month, monthlies)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}

	return f, nil
}

func (e *Exporter) buildMonthlyFile(year, month int, monthlies []model.Monthly) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := fmt.Sprintf("Monthly %04d-%02d", year, month)
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{
		"Settlement Number",
		"Brand ID",
		"Year",
		"Month",
		"Order Count",
		"Total Sales",
		"Commission",
		"Tax",
		"PG Fee",
		"Final Settlement",
		"Status",
	}

	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "K1", headerStyle)
	}

	for i, m := range monthlies {
		rowNum := i + 2

		cellAt := func(col int) string {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			return cell
		}

		f.SetCellValue(sheetName, cellAt(1), m.SettlementNumber)
		f.SetCellValue(sheetName, cellAt(2), m.BrandID)
		f.SetCellValue(sheetName, cellAt(3), m.Year)
		f.SetCellValue(sheetName, cellAt(4), m.Month)
		f.SetCellValue(sheetName, cellAt(5), m.TotalOrderCount)
		f.SetCellValue(sheetName, cellAt(6), m.TotalSalesAmount.String())
		f.SetCellValue(sheetName, cellAt(7), m.TotalCommissionAmount.String())
		f.SetCellValue(sheetName, cellAt(8), m.TotalTaxAmount.String())
		f.SetCellValue(sheetName, cellAt(9), m.TotalPgFeeAmount.String())
		f.SetCellValue(sheetName, cellAt(10), m.FinalSettlementAmount.String())
		f.SetCellValue(sheetName, cellAt(11), string(m.Status))
	}

	return f, nil
}
