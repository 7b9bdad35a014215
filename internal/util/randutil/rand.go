package randutil

import (
	"crypto/rand"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/tombowditch/ptpb/internal/config"
)

// Alphabet is the character set paste ids are drawn from. It avoids
// '~', which marks labels.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// RandString returns n characters chosen uniformly from alphabet using
// crypto/rand.
func RandString(n int, alphabet string) string {
	result := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))

	for i := range result {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			logrus.WithError(err).Error("crypto/rand failed")
			result[i] = alphabet[0]
			continue
		}
		result[i] = alphabet[num.Int64()]
	}
	return string(result)
}

// ShortID returns a public paste id.
func ShortID() string {
	return RandString(config.ShortIDLength, Alphabet)
}

// LongID returns a hard to guess id for private pastes.
func LongID() string {
	return RandString(config.LongIDLength, Alphabet)
}
