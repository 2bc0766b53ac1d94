package record

import "math/rand/v2"

// idAlphabet is the character set of generated ids.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateID returns prefix followed by random characters from [0-9a-zA-Z],
// length characters in total. If length does not exceed len(prefix) the
// prefix is returned unchanged.
//
// The source is not cryptographically secure: use it for public
// identifiers such as slugs or reference codes, never for secrets.
func GenerateID(prefix string, length int) string {
	n := length - len(prefix)
	if n <= 0 {
		return prefix
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))] //nolint:gosec // non-security identifiers
	}
	return prefix + string(b)
}
