package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"solana-cli/internal/domain"
	"solana-cli/internal/solana"
)

// Report is the result of one token analysis.
type Report struct {
	Mint     string
	Label    string
	Decimals uint8
	Metadata domain.TokenMetadata
	Supply   *solana.TokenAmount
	Notices  []string

	// Empty explains why there are no holders; the rest is then unset.
	Empty string

	Holders   []domain.AggregatedHolder
	Displayed int
	Subtotal  decimal.Decimal // raw, displayed holders
	Total     decimal.Decimal // raw, all holders

	HoldersOnly   bool
	TransferLimit int
	Others        []OwnerSection
	Signatures    *SignatureSection
}

// OwnerSection lists the other holdings of one top holder.
type OwnerSection struct {
	Owner   string
	Tokens  []domain.HolderToken
	Notices []string
	Err     string
}

// SignatureSection lists recent signatures touching the mint.
type SignatureSection struct {
	Limit  int
	Listed bool
	Items  []string
	Notice string
}

// SubtotalUI is the displayed holders' total scaled for display.
func (r *Report) SubtotalUI() decimal.Decimal {
	return r.Subtotal.Shift(-int32(r.Decimals))
}

// TotalUI is all holders' total scaled for display.
func (r *Report) TotalUI() decimal.Decimal {
	return r.Total.Shift(-int32(r.Decimals))
}

// SupplyUI returns the on-chain supply scaled for display, if known.
func (r *Report) SupplyUI() (decimal.Decimal, bool) {
	if r.Supply == nil {
		return decimal.Zero, false
	}
	if r.Supply.UIAmountString != "" {
		if d, err := decimal.NewFromString(r.Supply.UIAmountString); err == nil {
			return d, true
		}
	}
	raw, err := r.Supply.Raw()
	if err != nil {
		return decimal.Zero, false
	}
	return raw.Shift(-int32(r.Supply.Decimals)), true
}

// WriteText renders the report as human-readable text.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	for _, n := range r.Notices {
		fmt.Fprintf(&b, "Notice: %s\n", n)
	}
	if r.Empty != "" {
		b.WriteString(r.Empty + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "=== Holders of %s (%s) (top %d of %d) ===\n", r.Label, r.Mint, r.Displayed, len(r.Holders))
	fmt.Fprintf(&b, "Decimals: %d\n", r.Decimals)
	if supply, ok := r.SupplyUI(); ok {
		fmt.Fprintf(&b, "On-chain supply: %s\n", supply.StringFixed(6))
	}

	for i, h := range r.Holders[:r.Displayed] {
		primary, ok := h.PrimaryAccount()
		if !ok {
			primary = "<unknown-token-account>"
		}
		fmt.Fprintf(&b, "%3d. %s holds %s (%d token accounts, e.g. %s)\n",
			i+1, h.Owner, h.TotalUI(r.Decimals).StringFixed(6), h.AccountCount(), primary)
	}
	fmt.Fprintf(&b, "Subtotal (top %d): %s\n", r.Displayed, r.SubtotalUI().StringFixed(6))
	fmt.Fprintf(&b, "Total (all %d holders): %s\n", len(r.Holders), r.TotalUI().StringFixed(6))

	if r.HoldersOnly {
		b.WriteString("\nUse --top-holders N to change how many holders are shown.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n=== Other SPL tokens held by top holders (by USD value) ===\n")
	for _, s := range r.Others {
		for _, n := range s.Notices {
			fmt.Fprintf(&b, "    › %s\n", n)
		}
		switch {
		case s.Err != "":
			fmt.Fprintf(&b, "- %s: other tokens could not be fetched (%s)\n", s.Owner, s.Err)
		case len(s.Tokens) == 0:
			fmt.Fprintf(&b, "- %s holds no other priced SPL tokens\n", s.Owner)
		default:
			fmt.Fprintf(&b, "- %s also holds:\n", s.Owner)
			for _, t := range s.Tokens {
				b.WriteString("    - " + formatHolding(t) + "\n")
			}
		}
	}

	if s := r.Signatures; s != nil {
		if s.Listed {
			fmt.Fprintf(&b, "\n=== Last %d signatures for the token (DAS getSignaturesForAsset) ===\n", s.Limit)
			for _, sig := range s.Items {
				fmt.Fprintf(&b, "- %s\n", sig)
			}
		}
		if s.Notice != "" {
			if !s.Listed {
				b.WriteString("\n")
			}
			b.WriteString(s.Notice + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatHolding(t domain.HolderToken) string {
	price := "price: unknown"
	if t.PriceUSD != nil {
		price = fmt.Sprintf("price: $%.6f", *t.PriceUSD)
	}
	value := "≈ $-"
	if t.ValueUSD != nil {
		value = "≈ $" + t.ValueUSD.StringFixed(2)
	}
	return fmt.Sprintf("%s (%s) : %s (decimals: %d) [%s | %s]",
		t.Metadata.Label(t.Mint), t.Mint, t.AmountUI.StringFixed(6), t.Decimals, price, value)
}
