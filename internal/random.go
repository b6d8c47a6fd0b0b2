package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"math/big"
	"strings"
)

const (
	minPasscodeDigits = 4
	maxPasscodeDigits = 10
)

// NewPasscode returns a uniformly random numeric one-time passcode with the
// given number of digits, zero-padded.
func NewPasscode(digits int) (string, error) {
	if digits < minPasscodeDigits || digits > maxPasscodeDigits {
		return "", errors.New("invalid passcode digit count")
	}

	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	code := n.String()
	if pad := digits - len(code); pad > 0 {
		code = strings.Repeat("0", pad) + code
	}
	return code, nil
}

// HashPasscode derives the stored digest for a passcode.
func HashPasscode(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}

// PasscodeEqual compares a presented passcode to a stored digest in
// constant time.
func PasscodeEqual(code string, digest []byte) bool {
	h := HashPasscode(code)
	return subtle.ConstantTimeCompare(h[:], digest) == 1
}
