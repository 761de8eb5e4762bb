package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	inventorySheet = "Inventory"
	activitySheet  = "Activity"
	statementSheet = "Statement"
)

type ReportService interface {
	InventoryWorkbook(ctx context.Context) (*excelize.File, error)
	ActivityWorkbook(ctx context.Context, filter ActivityFilter) (*excelize.File, error)
	StatementWorkbook(ctx context.Context, customerID int64) (*excelize.File, error)
}

type reportService struct {
	inventory InventoryService
	activity  ActivityService
	ledger    LedgerService
}

func NewReportService(inventory InventoryService, activity ActivityService, ledger LedgerService) ReportService {
	return &reportService{inventory: inventory, activity: activity, ledger: ledger}
}

func (s *reportService) InventoryWorkbook(ctx context.Context) (*excelize.File, error) {
	records := s.inventory.List(ctx)
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.SKU, r.Name, r.Category,
			r.Cost.InexactFloat64(), r.Price.InexactFloat64(),
			r.CurrentStock, r.MinStock, r.MaxStock, r.Status,
			r.LastUpdated.Format("2006-01-02 15:04"),
		})
	}
	return newWorkbook(inventorySheet,
		[]any{"SKU", "Name", "Category", "Cost", "Price", "Current Stock", "Min Stock", "Max Stock", "Status", "Last Updated"},
		rows)
}

func (s *reportService) ActivityWorkbook(ctx context.Context, filter ActivityFilter) (*excelize.File, error) {
	records := s.activity.List(ctx, filter)
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.Timestamp.Format("2006-01-02 15:04"), r.Type, r.ItemName, r.Quantity,
			r.Price.InexactFloat64(), r.Total.InexactFloat64(),
			r.Details.DocumentNumber, r.Details.CustomerName, r.Details.PaymentMethod,
			r.Details.FromStore, r.Details.ToStore, r.Details.Note,
		})
	}
	return newWorkbook(activitySheet,
		[]any{"Date", "Type", "Item", "Quantity", "Price", "Total", "Document", "Customer", "Payment", "From", "To", "Note"},
		rows)
}

func (s *reportService) StatementWorkbook(ctx context.Context, customerID int64) (*excelize.File, error) {
	txns, err := s.ledger.Statement(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []any{
			t.Timestamp.Format("2006-01-02 15:04"), t.Kind, t.Description,
			t.Amount.InexactFloat64(), t.BalanceAfter.InexactFloat64(),
		})
	}
	return newWorkbook(statementSheet, []any{"Date", "Kind", "Description", "Amount", "Balance"}, rows)
}

// newWorkbook writes a header row followed by rows into a single sheet.
func newWorkbook(sheet string, header []any, rows [][]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
