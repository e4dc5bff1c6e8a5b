package wire_test

import (
	"testing"

	"github.com/protolens/pbtree/wire"
)

// FuzzReadVarint exercises the truncation-safety property of spec.md §8
// property 5: for any buffer, ReadVarint either succeeds with a length
// that fits inside the buffer or fails with a declared error — it never
// panics and never reports consuming more than was available.
func FuzzReadVarint(f *testing.F) {
	f.Add([]byte{0x96, 0x01})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	f.Add([]byte{})
	f.Add([]byte{0x00})

	f.Fuzz(func(t *testing.T, buf []byte) {
		rng := wire.NewRange(buf)
		_, n, err := rng.ReadVarint(0)
		if err != nil {
			if n != 0 {
				t.Fatalf("error result carried nonzero length %d", n)
			}
			return
		}
		if n < 1 || n > 10 {
			t.Fatalf("varint length %d out of [1,10]", n)
		}
		if n > len(buf) {
			t.Fatalf("reported consuming %d bytes from a %d-byte buffer", n, len(buf))
		}
	})
}
