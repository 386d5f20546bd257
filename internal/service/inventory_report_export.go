package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/jung-kurt/gofpdf"
)

// inventoryStatusReport is the rendered view of the ledger's read-only
// projections: low stock, overstock and expiring items.
type inventoryStatusReport struct {
	GeneratedAt time.Time
	ExpiryDays  int
	LowStock    []*core.InventoryItem
	Overstock   []*core.InventoryItem
	Expiring    []*core.InventoryItem
}

// GenerateInventoryStatusReportPDF renders the ledger's stock projections as
// a PDF for the shop manager's daily walkthrough.
func (s *InventoryService) GenerateInventoryStatusReportPDF(ctx context.Context, expiryDays int) ([]byte, string, error) {
	if expiryDays <= 0 {
		expiryDays = 7
	}

	lowStock, err := s.GetLowStock(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch low stock items: %w", err)
	}

	overstock, err := s.GetOverstock(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch overstock items: %w", err)
	}

	expiring, err := s.GetExpiring(ctx, time.Duration(expiryDays)*24*time.Hour)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch expiring items: %w", err)
	}

	report := &inventoryStatusReport{
		GeneratedAt: time.Now(),
		ExpiryDays:  expiryDays,
		LowStock:    lowStock,
		Overstock:   overstock,
		Expiring:    expiring,
	}

	pdfBytes, err := renderInventoryReportPDF(report)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("inventory-status-%s.pdf", report.GeneratedAt.Format("2006-01-02"))
	return pdfBytes, filename, nil
}

func renderInventoryReportPDF(report *inventoryStatusReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, "Pearl Street Teahouse", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 7, "Inventory Status Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated At: %s", report.GeneratedAt.Format("02 Jan 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Expiry Window: %d days", report.ExpiryDays), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	renderItemSection(pdf, "Low Stock (at or below minimum)", report.LowStock, func(item *core.InventoryItem) string {
		return fmt.Sprintf("- %s: %.2f %s on hand (min %.2f %s)",
			item.Name, item.CurrentStock, item.Unit, item.MinStock, item.Unit)
	})

	renderItemSection(pdf, "Overstock (at or above maximum)", report.Overstock, func(item *core.InventoryItem) string {
		return fmt.Sprintf("- %s: %.2f %s on hand (max %.2f %s)",
			item.Name, item.CurrentStock, item.Unit, item.MaxStock, item.Unit)
	})

	renderItemSection(pdf, fmt.Sprintf("Expiring Within %d Days", report.ExpiryDays), report.Expiring, func(item *core.InventoryItem) string {
		expiry := "-"
		if item.ExpiryDate != nil {
			expiry = item.ExpiryDate.Format("02 Jan 2006")
		}
		return fmt.Sprintf("- %s: %.2f %s on hand, expires %s",
			item.Name, item.CurrentStock, item.Unit, expiry)
	})

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buffer.Bytes(), nil
}

func renderItemSection(pdf *gofpdf.Fpdf, title string, items []*core.InventoryItem, line func(*core.InventoryItem) string) {
	ensureInventoryPageSpace(pdf, 20)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, title, "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if len(items) == 0 {
		pdf.CellFormat(0, 6, "Nothing to report.", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		return
	}

	for _, item := range items {
		ensureInventoryPageSpace(pdf, 8)
		text := line(item)
		if strings.TrimSpace(item.Category) != "" {
			text += fmt.Sprintf(" [%s]", item.Category)
		}
		pdf.MultiCell(0, 5, text, "", "L", false)
	}
	pdf.Ln(2)
}

func ensureInventoryPageSpace(pdf *gofpdf.Fpdf, minSpace float64) {
	_, pageHeight := pdf.GetPageSize()
	leftMargin, _, rightMargin, bottomMargin := pdf.GetMargins()
	usableBottom := pageHeight - bottomMargin
	if pdf.GetY()+minSpace > usableBottom {
		pdf.AddPage()
		pdf.SetX(leftMargin)
		pdf.SetRightMargin(rightMargin)
	}
}
