package otp

import (
	"crypto/rand"
	"math/big"
)

const CodeLength = 6

// CodeGenerator produces a fresh one-time code.
type CodeGenerator func() (string, error)

var ten = big.NewInt(10)

// GenerateCode returns CodeLength digits, each drawn uniformly from 0-9
// using crypto/rand. Leading zeros are allowed.
func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// IsWellFormed reports whether code has the right length and only digits.
func IsWellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
