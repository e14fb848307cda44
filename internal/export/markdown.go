package export

import (
	"fmt"
	"strings"

	"solana-cli/internal/analysis"
)

// RenderMarkdown renders the report as a Markdown document.
func RenderMarkdown(r *analysis.Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Holder report: %s\n\n", r.Label))
	sb.WriteString(fmt.Sprintf("Mint: `%s`\n\n", r.Mint))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Decimals | %d |\n", r.Decimals))
	if supply, ok := r.SupplyUI(); ok {
		sb.WriteString(fmt.Sprintf("| On-chain supply | %s |\n", supply.StringFixed(6)))
	}
	sb.WriteString(fmt.Sprintf("| Holders | %d |\n", len(r.Holders)))
	sb.WriteString(fmt.Sprintf("| Subtotal (top %d) | %s |\n", r.Displayed, r.SubtotalUI().StringFixed(6)))
	sb.WriteString(fmt.Sprintf("| Total (all holders) | %s |\n", r.TotalUI().StringFixed(6)))
	sb.WriteString("\n")

	notices := r.Notices
	if r.Empty != "" {
		notices = append(append([]string(nil), notices...), r.Empty)
	}
	if len(notices) > 0 {
		sb.WriteString("### Notices\n\n")
		for _, n := range notices {
			sb.WriteString(fmt.Sprintf("- %s\n", n))
		}
		sb.WriteString("\n")
	}

	// Holders
	sb.WriteString("## Top holders\n\n")
	if r.Displayed > 0 {
		sb.WriteString("| # | Owner | Amount | Token accounts | Example account |\n")
		sb.WriteString("|---|-------|--------|----------------|-----------------|\n")
		for i, h := range r.Holders[:r.Displayed] {
			primary, _ := h.PrimaryAccount()
			sb.WriteString(fmt.Sprintf("| %d | `%s` | %s | %d | `%s` |\n",
				i+1, h.Owner, h.TotalUI(r.Decimals).StringFixed(6), h.AccountCount(), primary))
		}
	} else {
		sb.WriteString("No holders.\n")
	}
	sb.WriteString("\n")

	if r.HoldersOnly || len(r.Others) == 0 {
		return sb.String()
	}

	// Other tokens
	sb.WriteString("## Other tokens held by top holders\n\n")
	for _, s := range r.Others {
		sb.WriteString(fmt.Sprintf("### `%s`\n\n", s.Owner))
		if s.Err != "" {
			sb.WriteString(fmt.Sprintf("Unavailable: %s\n\n", s.Err))
			continue
		}
		if len(s.Tokens) > 0 {
			sb.WriteString("| Token | Mint | Amount | Price USD | Value USD |\n")
			sb.WriteString("|-------|------|--------|-----------|-----------|\n")
			for _, t := range s.Tokens {
				sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s | %s |\n",
					t.Metadata.Label(t.Mint), t.Mint, t.AmountUI.StringFixed(6), priceCell(t.PriceUSD), t.Value().StringFixed(2)))
			}
		} else {
			sb.WriteString("No other priced tokens.\n")
		}
		for _, n := range s.Notices {
			sb.WriteString(fmt.Sprintf("- %s\n", n))
		}
		sb.WriteString("\n")
	}

	// Signatures
	if s := r.Signatures; s != nil {
		sb.WriteString("## Recent signatures\n\n")
		for _, sig := range s.Items {
			sb.WriteString(fmt.Sprintf("- `%s`\n", sig))
		}
		if s.Notice != "" {
			sb.WriteString(s.Notice + "\n")
		}
	}

	return sb.String()
}

func priceCell(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *p)
}
