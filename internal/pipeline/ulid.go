package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Dependency-free ULID generator: 26 Crockford Base32 characters over a
// 48-bit millisecond timestamp plus 80 bits of randomness. Jobs created in
// the same millisecond stay unique via a sequence counter folded into the
// random section.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encode(b)
}

// encode maps 128 bits to 26 Base32 characters. The first character covers
// only the top 3 bits of the timestamp, so the accumulator is primed with
// two zero bits to make 26*5 == 130 bits line up with the payload.
func encode(b [16]byte) string {
	var out [26]byte
	acc := uint16(0)
	pos := 0
	bits := 2
	for _, by := range b {
		acc = acc<<8 | uint16(by)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockford[(acc>>bits)&31]
			pos++
		}
	}
	return string(out[:])
}
