package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TimestampLayout formats order timestamps in exported sheets
const TimestampLayout = "2006-01-02 15:04:05"

// Column names are part of the export contract.
var (
	LineItemColumns     = []string{"timestamp", "channel", "state", "orderId", "productName", "lineSubtotal"}
	OrderSummaryColumns = []string{"timestamp", "channel", "state", "orderId", "subtotal", "tip", "total"}
)

// Table is a report ready for tabular export
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]interface{}
}

// LineItemTable converts line item rows into an exportable table
func LineItemTable(rows []LineItemRow) Table {
	t := Table{Sheet: "LineItems", Columns: LineItemColumns}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.Timestamp, string(r.Channel), string(r.State), r.OrderID, r.ProductName, r.LineSubtotal,
		})
	}
	return t
}

// OrderSummaryTable converts order rows into an exportable table
func OrderSummaryTable(rows []OrderSummaryRow) Table {
	t := Table{Sheet: "Orders", Columns: OrderSummaryColumns}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{
			r.Timestamp, string(r.Channel), string(r.State), r.OrderID, r.Subtotal, r.Tip, r.Total,
		})
	}
	return t
}

// WriteCSV writes the table as CSV with a header row
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the table as a single-sheet workbook
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for col, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Sheet, cell, name); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Sheet, cell, xlsxValue(value)); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case time.Time:
		return x.Format(TimestampLayout)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// xlsxValue keeps amounts numeric so the sheet can sum them.
func xlsxValue(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.Format(TimestampLayout)
	case decimal.Decimal:
		return x.InexactFloat64()
	default:
		return x
	}
}
