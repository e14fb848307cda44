package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"solana-cli/internal/analysis"
)

var holderHeader = []string{"rank", "owner", "amount", "raw_amount", "token_accounts", "primary_account"}

// WriteHoldersCSV writes every aggregated holder, not only the displayed ones.
func WriteHoldersCSV(w io.Writer, r *analysis.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(holderHeader); err != nil {
		return err
	}
	for i, h := range r.Holders {
		primary, _ := h.PrimaryAccount()
		if err := cw.Write([]string{
			strconv.Itoa(i + 1),
			h.Owner,
			h.TotalUI(r.Decimals).String(),
			h.TotalRaw.String(),
			strconv.Itoa(h.AccountCount()),
			primary,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveHoldersCSV writes the holders CSV to path.
func SaveHoldersCSV(path string, r *analysis.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteHoldersCSV(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
