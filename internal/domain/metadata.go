package domain

// TokenMetadata is the display information resolved for a mint.
// Every field is optional; a zero value means nothing was found.
type TokenMetadata struct {
	Name     *string  // token name (nullable)
	Symbol   *string  // token symbol (nullable)
	Decimals *uint8   // decimals reported by the indexer (nullable)
	PriceUSD *float64 // price embedded in the asset record (nullable)
}

// Label renders "SYMBOL / Name", or whichever of the two is set, or fallback.
func (m TokenMetadata) Label(fallback string) string {
	symbol := deref(m.Symbol)
	name := deref(m.Name)

	if symbol != "" {
		if name != "" && name != symbol {
			return symbol + " / " + name
		}
		return symbol
	}
	if name != "" {
		return name
	}
	return fallback
}

// IsEmpty reports whether no field was resolved.
func (m TokenMetadata) IsEmpty() bool {
	return m.Name == nil && m.Symbol == nil && m.Decimals == nil && m.PriceUSD == nil
}

// WithPrice returns a copy of m carrying price.
func (m TokenMetadata) WithPrice(price float64) TokenMetadata {
	m.PriceUSD = &price
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
