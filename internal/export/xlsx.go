// Package export writes analysis reports to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"solana-cli/internal/analysis"
)

// Sheet names.
const (
	SheetSummary    = "Summary"
	SheetHolders    = "Holders"
	SheetOther      = "Other tokens"
	SheetSignatures = "Signatures"
)

// SaveXLSX writes r to path.
func SaveXLSX(path string, r *analysis.Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes r as an XLSX workbook to w.
func WriteXLSX(w io.Writer, r *analysis.Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(r *analysis.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(r)},
		{SheetHolders, holderRows(r)},
		{SheetOther, otherRows(r)},
		{SheetSignatures, signatureRows(r)},
	}
	for _, s := range sheets {
		if s.name != SheetSummary {
			if _, err := f.NewSheet(s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
			}
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(r *analysis.Report) [][]interface{} {
	rows := [][]interface{}{
		{"Mint", r.Mint},
		{"Token", r.Label},
		{"Decimals", int(r.Decimals)},
	}
	if supply, ok := r.SupplyUI(); ok {
		rows = append(rows, []interface{}{"On-chain supply", supply.InexactFloat64()})
	}
	rows = append(rows,
		[]interface{}{"Holders", len(r.Holders)},
		[]interface{}{"Displayed", r.Displayed},
		[]interface{}{"Subtotal (displayed)", r.SubtotalUI().InexactFloat64()},
		[]interface{}{"Total (all holders)", r.TotalUI().InexactFloat64()},
	)
	for _, n := range r.Notices {
		rows = append(rows, []interface{}{"Notice", n})
	}
	if r.Empty != "" {
		rows = append(rows, []interface{}{"Notice", r.Empty})
	}
	return rows
}

func holderRows(r *analysis.Report) [][]interface{} {
	rows := [][]interface{}{{"Rank", "Owner", "Amount", "Raw amount", "Token accounts", "Primary account"}}
	for i, h := range r.Holders {
		primary, _ := h.PrimaryAccount()
		rows = append(rows, []interface{}{
			i + 1,
			h.Owner,
			h.TotalUI(r.Decimals).InexactFloat64(),
			h.TotalRaw.String(),
			h.AccountCount(),
			primary,
		})
	}
	return rows
}

func otherRows(r *analysis.Report) [][]interface{} {
	rows := [][]interface{}{{"Owner", "Mint", "Token", "Amount", "Decimals", "Price USD", "Value USD"}}
	for _, s := range r.Others {
		for _, t := range s.Tokens {
			row := []interface{}{s.Owner, t.Mint, t.Metadata.Label(t.Mint), t.AmountUI.InexactFloat64(), int(t.Decimals), nil, nil}
			if t.PriceUSD != nil {
				row[5] = *t.PriceUSD
			}
			if t.ValueUSD != nil {
				row[6] = t.ValueUSD.InexactFloat64()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func signatureRows(r *analysis.Report) [][]interface{} {
	rows := [][]interface{}{{"Signature"}}
	if r.Signatures == nil {
		return rows
	}
	for _, sig := range r.Signatures.Items {
		rows = append(rows, []interface{}{sig})
	}
	return rows
}
