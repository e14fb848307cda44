package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const pdaMarker = "ProgramDerivedAddress"

// FindProgramAddress derives a Program Derived Address and its bump seed.
// The bump is searched from 255 down; the first hash that is off the ed25519
// curve wins.
func FindProgramAddress(seeds [][]byte, programID []byte) (string, uint8, error) {
	if len(programID) != 32 {
		return "", 0, fmt.Errorf("program id must be 32 bytes, got %d", len(programID))
	}
	for bump := 255; bump >= 0; bump-- {
		data := make([]byte, 0, 64)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, programID...)
		data = append(data, []byte(pdaMarker)...)

		hash := sha256.Sum256(data)
		if !IsOnCurve(hash[:]) {
			return base58.Encode(hash[:]), uint8(bump), nil
		}
	}
	return "", 0, fmt.Errorf("no viable bump seed")
}

// IsOnCurve reports whether point is a valid compressed ed25519 point.
func IsOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// IsOnCurveAddress decodes a base58 address and reports whether it lies on
// the curve, i.e. whether a private key can exist for it.
func IsOnCurveAddress(address string) (bool, error) {
	b, err := base58.Decode(address)
	if err != nil {
		return false, fmt.Errorf("decode address %q: %w", address, err)
	}
	return IsOnCurve(b), nil
}
