package common

import (
	"crypto/rand"
	"math/big"
)

const alphanum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MakeRandString generates a random alphanumeric string of the given length,
// drawn uniformly from 62 symbols using crypto/rand. It is used for opaque
// refresh tokens, where guessability matters.
//
// It returns an error if the random number generator fails.
func MakeRandString(length int) (string, error) {
	max := big.NewInt(int64(len(alphanum)))

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphanum[n.Int64()]
	}

	return string(b), nil
}
