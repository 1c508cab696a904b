// Package guid generates the pseudo-unique identifiers embedded in TRX
// documents. The format is 32 lowercase hex digits in 8-4-4-4-12 groups,
// each digit drawn independently from a uniform source. These are *not*
// guaranteed globally unique; they are "unique enough" for anything
// short of correlating hundreds of thousands of runs.
package guid

import (
	"crypto/rand"
	mrand "math/rand/v2"
	"strings"
)

// Source supplies uniform random values. *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

var segmentLengths = []int{8, 4, 4, 4, 12}

const hexDigits = "0123456789abcdef"

// NewString returns a fresh identifier using a per-call local random
// source, keeping callers free of shared generator state.
func NewString() string {
	var seed [32]byte
	_, _ = rand.Read(seed[:]) // crypto/rand never fails
	return FromSource(mrand.New(mrand.NewChaCha8(seed)))
}

// FromSource renders an identifier from the given source. Tests inject a
// deterministic source here.
func FromSource(src Source) string {
	var sb strings.Builder
	sb.Grow(36)
	for i, segLen := range segmentLengths {
		if i > 0 {
			sb.WriteByte('-')
		}
		for j := 0; j < segLen; j++ {
			sb.WriteByte(hexDigits[src.IntN(16)])
		}
	}
	return sb.String()
}
