package utils

import (
	"fmt"
	"math/rand"
)

const referenceSuffixLength = 10
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference builds an opaque reference like "rcpt_8KD02M41QZ" for
// gateway receipts and admission numbers. The global rand source is
// safe for concurrent order creation.
func NewReference(prefix string) string {
	b := make([]byte, referenceSuffixLength)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return fmt.Sprintf("%s_%s", prefix, string(b))
}
