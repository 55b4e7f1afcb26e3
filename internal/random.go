package internal

import (
	"crypto/rand"
	"math/big"
)

const (
	challengeCodeMin = 1000
	challengeCodeMax = 9999
)

// NewChallengeCode returns a 4-digit OTP code drawn uniformly at random from
// [1000, 9999] using crypto/rand.
func NewChallengeCode() (int, error) {
	span := big.NewInt(challengeCodeMax - challengeCodeMin + 1)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, err
	}

	return challengeCodeMin + int(n.Int64()), nil
}
