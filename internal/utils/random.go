package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/yukikurage/taker-api/internal/constants"
)

// RandomIntInRange returns a uniformly random integer in [min, max].
func RandomIntInRange(min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("invalid range [%d, %d]", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return min + int(n.Int64()), nil
}

// GenerateLoginID returns a random 5-digit login id candidate.
func GenerateLoginID() (int, error) {
	return RandomIntInRange(constants.LoginIDMin, constants.LoginIDMax)
}

// ChallengeOperands returns the two addends of a reset question, each in 1..9.
func ChallengeOperands() (int, int, error) {
	a, err := RandomIntInRange(1, constants.ChallengeOperandMax)
	if err != nil {
		return 0, 0, err
	}
	b, err := RandomIntInRange(1, constants.ChallengeOperandMax)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
