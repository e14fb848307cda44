package solana

import (
	"encoding/binary"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
)

// MetaplexProgramID is the Metaplex Token Metadata program.
const MetaplexProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

const metadataKeyV1 = 4

// MetaplexMetadata holds the display fields of a Metaplex metadata account.
type MetaplexMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// MetadataAddress derives the Metaplex metadata PDA for mint.
// Seeds: ["metadata", metaplex_program_id, mint]
func MetadataAddress(mint string) (string, error) {
	mintBytes, err := base58.Decode(mint)
	if err != nil || len(mintBytes) != 32 {
		return "", fmt.Errorf("invalid mint address %q", mint)
	}
	programBytes, err := base58.Decode(MetaplexProgramID)
	if err != nil {
		return "", fmt.Errorf("decode metaplex program id: %w", err)
	}

	seeds := [][]byte{
		[]byte("metadata"),
		programBytes,
		mintBytes,
	}
	pda, _, err := FindProgramAddress(seeds, programBytes)
	return pda, err
}

// ParseMetaplexMetadata decodes the leading fields of a MetadataV1 account:
// key(u8) | updateAuthority(32) | mint(32) | name | symbol | uri (borsh strings).
// Strings are NUL-padded on chain.
func ParseMetaplexMetadata(data []byte) (*MetaplexMetadata, error) {
	dec := bin.NewBorshDecoder(data)

	key, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	if key != metadataKeyV1 {
		return nil, fmt.Errorf("unexpected metadata key %d", key)
	}
	if err := dec.SkipBytes(64); err != nil {
		return nil, fmt.Errorf("skip authorities: %w", err)
	}

	fields := make([]string, 3)
	for i := range fields {
		n, err := dec.ReadUint32(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("read string field %d length: %w", i, err)
		}
		b, err := dec.ReadNBytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("read string field %d: %w", i, err)
		}
		fields[i] = strings.TrimRight(string(b), "\x00")
	}

	return &MetaplexMetadata{Name: fields[0], Symbol: fields[1], URI: fields[2]}, nil
}
