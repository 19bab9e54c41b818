package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	analytics "energywatch/internal/analytics/domain"
)

// BuildSummaryCSV renders a summary as CSV sections.
func BuildSummaryCSV(summary analytics.DashboardSummary, from, to time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	records := [][]string{
		{"from", from.Format(time.RFC3339)},
		{"to", to.Format(time.RFC3339)},
		{"total_kwh", formatKwh(summary.TotalKwh)},
		{"total_cost", strconv.FormatFloat(summary.TotalCost, 'f', 2, 64)},
		{},
		{"section", "bucket", "kwh"},
	}
	for _, point := range summary.ByHour {
		records = append(records, []string{"by_hour", point.Bucket, formatKwh(point.Kwh)})
	}
	for _, point := range summary.ByDay {
		records = append(records, []string{"by_day", point.Bucket, formatKwh(point.Kwh)})
	}
	records = append(records, []string{}, []string{"device_id", "device_name", "kwh"})
	for _, device := range summary.TopDevices {
		records = append(records, []string{
			strconv.FormatInt(device.DeviceID, 10),
			device.Name,
			formatKwh(device.Kwh),
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryPDF renders a minimal PDF for a summary.
func BuildSummaryPDF(summary analytics.DashboardSummary, from, to time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Consumption Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", from.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To: %s", to.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Energy (kWh): %.3f", summary.TotalKwh))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Cost: %.2f", summary.TotalCost))
	pdf.Ln(8)

	// Daily table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Energy (kWh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range summary.ByDay {
		pdf.CellFormat(60, 6, point.Bucket, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.3f", point.Kwh), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Device", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Energy (kWh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, device := range summary.TopDevices {
		pdf.CellFormat(60, 6, device.Name, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.3f", device.Kwh), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryXLSX renders a minimal XLSX for a summary.
func BuildSummaryXLSX(summary analytics.DashboardSummary, from, to time.Time) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	hoursSheet := "by_hour"
	daysSheet := "by_day"
	devicesSheet := "devices"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(hoursSheet)
	f.NewSheet(daysSheet)
	f.NewSheet(devicesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Consumption Summary")
	_ = f.SetCellValue(summarySheet, "A3", "From")
	_ = f.SetCellValue(summarySheet, "B3", from.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "To")
	_ = f.SetCellValue(summarySheet, "B4", to.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Total Energy (kWh)")
	_ = f.SetCellValue(summarySheet, "B5", summary.TotalKwh)
	_ = f.SetCellValue(summarySheet, "A6", "Total Cost")
	_ = f.SetCellValue(summarySheet, "B6", summary.TotalCost)

	writePoints := func(sheet string, points []analytics.Point) {
		_ = f.SetCellValue(sheet, "A1", "Bucket")
		_ = f.SetCellValue(sheet, "B1", "Energy (kWh)")
		for i, point := range points {
			row := i + 2
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), point.Bucket)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), point.Kwh)
		}
	}
	writePoints(hoursSheet, summary.ByHour)
	writePoints(daysSheet, summary.ByDay)

	_ = f.SetCellValue(devicesSheet, "A1", "Device ID")
	_ = f.SetCellValue(devicesSheet, "B1", "Name")
	_ = f.SetCellValue(devicesSheet, "C1", "Energy (kWh)")
	for i, device := range summary.TopDevices {
		row := i + 2
		_ = f.SetCellValue(devicesSheet, fmt.Sprintf("A%d", row), device.DeviceID)
		_ = f.SetCellValue(devicesSheet, fmt.Sprintf("B%d", row), device.Name)
		_ = f.SetCellValue(devicesSheet, fmt.Sprintf("C%d", row), device.Kwh)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatKwh(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
