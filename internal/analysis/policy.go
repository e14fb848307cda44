package analysis

import "fmt"

// Field names an input the token analysis depends on.
type Field string

// Inputs of the analysis, by where they come from.
const (
	FieldMintAddress     Field = "mint address"
	FieldSubjectDecimals Field = "mint decimals"
	FieldHolderAccounts  Field = "holder token accounts"
	FieldAccountData     Field = "token account data"
	FieldSubjectMetadata Field = "token metadata"
	FieldSupply          Field = "token supply"
	FieldOwnerTokens     Field = "owner token list"
	FieldOtherDecimals   Field = "other-token decimals"
	FieldOtherMetadata   Field = "other-token metadata"
	FieldPrice           Field = "price"
	FieldSignatures      Field = "signature history"
)

// Tier says what a failure to resolve a field does to the command.
type Tier int

const (
	// Essential failures abort the analysis.
	Essential Tier = iota
	// Enrichment failures print a notice and omit the affected item.
	Enrichment
)

var policy = map[Field]Tier{
	FieldMintAddress:     Essential,
	FieldSubjectDecimals: Essential,
	FieldHolderAccounts:  Essential,
	FieldAccountData:     Essential,
	FieldSubjectMetadata: Enrichment,
	FieldSupply:          Enrichment,
	FieldOwnerTokens:     Enrichment,
	FieldOtherDecimals:   Enrichment,
	FieldOtherMetadata:   Enrichment,
	FieldPrice:           Enrichment,
	FieldSignatures:      Enrichment,
}

// PolicyFor returns the tier of f. Unknown fields are essential.
func PolicyFor(f Field) Tier {
	t, ok := policy[f]
	if !ok {
		return Essential
	}
	return t
}

// FieldError is a failure to resolve one field.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// degrade applies the policy to err. Essential failures come back as a
// *FieldError; enrichment failures come back as a notice.
func degrade(f Field, err error) (notice string, fatal error) {
	if err == nil {
		return "", nil
	}
	if PolicyFor(f) == Essential {
		return "", &FieldError{Field: f, Err: err}
	}
	return fmt.Sprintf("%s unavailable (%v)", f, err), nil
}
