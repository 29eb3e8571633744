package cpk

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	xrand "golang.org/x/exp/rand"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	rngMut sync.Mutex
	rng    = xrand.New(xrand.NewSource(uint64(time.Now().UnixNano())))
)

// RandomCID returns a CIDv1 with the identity codec whose
// multihash is the sha2-256 digest of 8 random bytes
func RandomCID() cid.Cid {
	c, err := NewCID(RandomBytes(8), uint64(multicodec.Identity))
	if err != nil {
		panic(err)
	}
	return c
}

// NewCID hashes data with sha2-256 and wraps it in a CIDv1
func NewCID(data []byte, codec uint64) (cid.Cid, error) {
	h, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(codec, h), nil
}

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomString returns n random alphanumeric characters
func RandomString(n int) string {
	rngMut.Lock()
	defer rngMut.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rng.Intn(len(alphanumeric))]
	}
	return string(b)
}

func RandomUint32() uint32 {
	rngMut.Lock()
	defer rngMut.Unlock()
	return rng.Uint32()
}

func RandomUint64() uint64 {
	rngMut.Lock()
	defer rngMut.Unlock()
	return rng.Uint64()
}
