package service

import (
	"crypto/rand"
	"fmt"
)

// verificationAlphabet drops I, O, 0 and 1 so codes survive being read aloud.
// Its length divides 256, so byte%len is unbiased.
const verificationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator returns a fresh candidate verification code.
type CodeGenerator func() (string, error)

// NewRandomCodeGenerator draws length characters from a crypto/rand source.
func NewRandomCodeGenerator(length int) CodeGenerator {
	return func() (string, error) {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("verification code: %w", err)
		}
		for i, b := range buf {
			buf[i] = verificationAlphabet[int(b)%len(verificationAlphabet)]
		}
		return string(buf), nil
	}
}
