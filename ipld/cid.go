package ipld

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

type MultihashInfo struct {
	Code   uint64
	Name   string
	Size   int
	Digest []byte
}

func (m MultihashInfo) String() string {
	return fmt.Sprintf("Code: 0x%x (%s)\nSize: %d\nDigest(hex): %s",
		m.Code, m.Name, m.Size, hex.EncodeToString(m.Digest))
}

// InspectMultihash decodes a binary multihash
func InspectMultihash(b []byte) (MultihashInfo, error) {
	dec, err := multihash.Decode(b)
	if err != nil {
		return MultihashInfo{}, fmt.Errorf("decode multihash: %w", err)
	}
	return MultihashInfo{
		Code:   dec.Code,
		Name:   dec.Name,
		Size:   dec.Length,
		Digest: dec.Digest,
	}, nil
}

// SumMultihash hashes data with the named hash function
func SumMultihash(data []byte, hashName string) (multihash.Multihash, error) {
	code, ok := multihash.Names[strings.ToLower(hashName)]
	if !ok {
		return nil, fmt.Errorf("unknown hash function: %s", hashName)
	}
	return multihash.Sum(data, code, -1)
}

type CIDInfo struct {
	CID      cid.Cid
	Version  uint64
	Codec    uint64
	HashCode uint64
	Digest   []byte
}

func (c CIDInfo) String() string {
	return fmt.Sprintf("CID: %s\nVersion: V%d\nCodec: 0x%x (%s)\nHash Code: 0x%x (%s)\nHash: 0x%s",
		c.CID, c.Version,
		c.Codec, multicodec.Code(c.Codec),
		c.HashCode, multicodec.Code(c.HashCode),
		hex.EncodeToString(c.Digest))
}

// InspectCID parses s in any supported form. The reported CID
// is always the v1 form, while Version keeps the input's version
func InspectCID(s string) (CIDInfo, error) {
	c, err := cid.Decode(strings.TrimSpace(s))
	if err != nil {
		return CIDInfo{}, fmt.Errorf("decode cid: %w", err)
	}
	dec, err := multihash.Decode(c.Hash())
	if err != nil {
		return CIDInfo{}, fmt.Errorf("decode cid multihash: %w", err)
	}

	return CIDInfo{
		CID:      cid.NewCidV1(c.Type(), c.Hash()),
		Version:  c.Version(),
		Codec:    c.Type(),
		HashCode: dec.Code,
		Digest:   dec.Digest,
	}, nil
}

// CreateCID builds a CIDv1 over data using a named codec
// and hash function
func CreateCID(data []byte, codecName, hashName string) (cid.Cid, error) {
	var codec multicodec.Code
	if err := codec.Set(codecName); err != nil {
		return cid.Undef, fmt.Errorf("unknown codec: %s", codecName)
	}
	hashCode, ok := multihash.Names[strings.ToLower(hashName)]
	if !ok {
		return cid.Undef, fmt.Errorf("unknown hash function: %s", hashName)
	}

	p := cid.Prefix{
		Version:  1,
		Codec:    uint64(codec),
		MhType:   hashCode,
		MhLength: -1,
	}
	return p.Sum(data)
}
