// Package report builds downloadable exports of a user's invoice history.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

const (
	invoicesSheet = "Invoices"
	itemsSheet    = "Items"
)

// BuildInvoiceWorkbook renders the given invoices into an xlsx workbook with
// one sheet for invoice headers and one for line items, and returns the
// serialized file.
func BuildInvoiceWorkbook(invoices []*entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("failed to create items sheet: %w", err)
	}

	if err := writeInvoiceSheet(f, invoices); err != nil {
		return nil, err
	}
	if err := writeItemSheet(f, invoices); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInvoiceSheet(f *excelize.File, invoices []*entity.Invoice) error {
	header := []interface{}{"ID", "Vendor", "Date", "Total Amount", "Currency", "Created At"}
	if err := f.SetSheetRow(invoicesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, inv := range invoices {
		row := []interface{}{
			inv.ID,
			inv.Vendor,
			inv.Date,
			inv.TotalAmount,
			inv.Currency,
			inv.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(invoicesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write invoice row: %w", err)
		}
	}

	return nil
}

func writeItemSheet(f *excelize.File, invoices []*entity.Invoice) error {
	header := []interface{}{"Invoice ID", "Vendor", "Date", "Description", "Quantity", "Unit Price", "Total Price"}
	if err := f.SetSheetRow(itemsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	rowNum := 2
	for _, inv := range invoices {
		for _, it := range inv.Items {
			row := []interface{}{
				inv.ID,
				inv.Vendor,
				inv.Date,
				it.Description,
				it.Quantity,
				it.UnitPrice,
				it.TotalPrice,
			}
			cell := fmt.Sprintf("A%d", rowNum)
			if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write item row: %w", err)
			}
			rowNum++
		}
	}

	return nil
}
