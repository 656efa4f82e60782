// Package seeded picks indices from a fixed pseudo-random stream derived
// from a string seed.
//
// The stream is the ARC4 construction popularised by the seedrandom
// library: the seed's UTF-16 code units are folded into a 256 byte key, an
// RC4 state is scheduled from that key and its first 256 output bytes are
// discarded. Each float is assembled from six output bytes and extended with
// further bytes until it carries 52 significant bits. Daily selections that
// were already shown to players were derived from this exact stream, so the
// algorithm must not change.
package seeded

import (
	"errors"
	"unicode/utf16"
)

const (
	width       = 256
	mask        = width - 1
	chunks      = 6
	startDenom  = 1 << (8 * chunks) // width^chunks
	significand = 1 << 52
	overflow    = 1 << 53
)

// ErrEmpty is returned when asked to select from an empty collection.
var ErrEmpty = errors.New("seeded: empty collection")

// Rand is a seeded generator. It is not safe for concurrent use.
type Rand struct {
	i, j uint8
	s    [width]uint8
}

// New schedules a generator from seed.
func New(seed string) *Rand {
	key := mixKey(seed)
	r := &Rand{}
	for i := 0; i < width; i++ {
		r.s[i] = uint8(i)
	}
	var j uint8
	for i := 0; i < width; i++ {
		t := r.s[i]
		j = j + uint8(key[i%len(key)]) + t
		r.s[i] = r.s[j]
		r.s[j] = t
	}
	r.bytes(width)
	return r
}

// mixKey folds the seed into the RC4 key. Keys shorter than 256 entries are
// not padded; an empty seed yields the single-entry key {0}.
func mixKey(seed string) []int {
	units := utf16.Encode([]rune(seed))
	key := make([]int, 0, width)
	var smear int32
	for j, u := range units {
		pos := j & mask
		if pos < len(key) {
			smear ^= int32(key[pos] * 19)
			key[pos] = int((smear + int32(u)) & mask)
			continue
		}
		key = append(key, int((smear+int32(u))&mask))
	}
	if len(key) == 0 {
		key = []int{0}
	}
	return key
}

// bytes draws count bytes from the RC4 stream as a big-endian integer.
func (r *Rand) bytes(count int) uint64 {
	var out uint64
	i, j := r.i, r.j
	for ; count > 0; count-- {
		i++
		t := r.s[i]
		j += t
		r.s[i] = r.s[j]
		r.s[j] = t
		out = out*width + uint64(r.s[r.s[i]+r.s[j]])
	}
	r.i, r.j = i, j
	return out
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	n := r.bytes(chunks)
	d := float64(startDenom)
	var x uint64
	for n < significand {
		n = (n + x) * width
		d *= width
		x = r.bytes(1)
	}
	for n >= overflow {
		n /= 2
		d /= 2
		x >>= 1
	}
	return (float64(n) + float64(x)) / d
}

// Index returns floor(Float64() * n).
func (r *Rand) Index(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmpty
	}
	idx := int(r.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx, nil
}

// Select is the one-shot form used for daily picks: the first draw of the
// stream seeded by seed, scaled to [0, n).
func Select(seed string, n int) (int, error) {
	return New(seed).Index(n)
}
