package util

import (
	"crypto/rand"
	"math/big"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomKey returns n random base-36 characters. Ballot security keys are
// built from it; they stop casual guessing, nothing more.
func RandomKey(n int) (string, error) {
	max := big.NewInt(int64(len(base36)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = base36[idx.Int64()]
	}
	return string(b), nil
}
