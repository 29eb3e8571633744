package multibase

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	mb "github.com/multiformats/go-multibase"
)

var ErrUnknownBase = errors.New("unknown base")

type codec interface {
	encode(data []byte) string
	decode(s string) ([]byte, error)
}

// Base is a multibase encoding, identified by its name
// and the single character prefix it is tagged with
type Base struct {
	Name   string
	Prefix rune
	Desc   string

	codec codec
}

func (b Base) String() string {
	return b.Name
}

// Encode returns the multibase representation of data,
// the encoded body prefixed by the base's character
func (b Base) Encode(data []byte) string {
	return string(b.Prefix) + b.codec.encode(data)
}

// DecodeBody decodes s as this base with no prefix present
func (b Base) DecodeBody(s string) ([]byte, error) {
	return b.codec.decode(s)
}

var bases = []Base{
	{"base2", '0', "binary (01010101)", libCodec(mb.Base2)},
	{"base8", '7', "octal", octal{}},
	{"base10", '9', "decimal", decimal{}},
	{"base16", 'f', "hexadecimal", hexCodec{upper: false}},
	{"base16upper", 'F', "hexadecimal", hexCodec{upper: true}},
	{"base32hex", 'v', "rfc4648 no padding - highest char", libCodec(mb.Base32hex)},
	{"base32hexupper", 'V', "rfc4648 no padding - highest char", libCodec(mb.Base32hexUpper)},
	{"base32", 'b', "rfc4648 no padding", libCodec(mb.Base32)},
	{"base32upper", 'B', "rfc4648 no padding", libCodec(mb.Base32Upper)},
	{"base32z", 'h', "z-base-32 (used by Tahoe-LAFS)", stdCodec{zbase32}},
	{"base36", 'k', "lowercase alphanumeric no padding", libCodec(mb.Base36)},
	{"base36upper", 'K', "uppercase alphanumeric no padding", libCodec(mb.Base36Upper)},
	{"base58flickr", 'Z', "base58 flicker", libCodec(mb.Base58Flickr)},
	{"base58btc", 'z', "base58 bitcoin", libCodec(mb.Base58BTC)},
	{"base64", 'm', "rfc4648 no padding", libCodec(mb.Base64)},
	{"base64url", 'u', "rfc4648 no padding", libCodec(mb.Base64url)},
}

// Bases lists every supported base
func Bases() []Base {
	out := make([]Base, len(bases))
	copy(out, bases)
	return out
}

// Lookup finds a base by name or by prefix character. Names
// are matched ignoring case and dashes, so "base58-btc" works
func Lookup(name string) (Base, error) {
	norm := strings.ReplaceAll(strings.ToLower(name), "-", "")
	for _, b := range bases {
		if b.Name == norm || string(b.Prefix) == name {
			return b, nil
		}
	}
	return Base{}, fmt.Errorf("%w: %s", ErrUnknownBase, name)
}

func byPrefix(p rune) (Base, bool) {
	for _, b := range bases {
		if b.Prefix == p {
			return b, true
		}
	}
	return Base{}, false
}

func Encode(b Base, data []byte) string {
	return b.Encode(data)
}

// Decode decodes a multibase string. Prefixes outside of the
// base table fall through to go-multibase, so padded variants
// are still understood
func Decode(s string) (Base, []byte, error) {
	if s == "" {
		return Base{}, nil, fmt.Errorf("%w: empty input", ErrUnknownBase)
	}

	p := []rune(s)[0]
	if b, ok := byPrefix(p); ok {
		data, err := b.codec.decode(strings.TrimPrefix(s, string(p)))
		if err != nil {
			return Base{}, nil, err
		}
		return b, data, nil
	}

	enc, data, err := mb.Decode(s)
	if err != nil {
		return Base{}, nil, fmt.Errorf("%w: %s", ErrUnknownBase, err)
	}
	return Base{
		Name:   mb.EncodingToStr[enc],
		Prefix: rune(enc),
		codec:  libCodec(enc),
	}, data, nil
}

// Guess works out which base s is encoded with. A valid multibase
// string is preferred, otherwise s is tried against each base as
// an unprefixed body
func Guess(s string) (b Base, isMultibase bool, ok bool) {
	if b, _, err := Decode(s); err == nil {
		return b, true, true
	}

	for _, b := range bases {
		if b.Name == "base36" || b.Name == "base36upper" {
			continue
		}
		if _, err := b.codec.decode(s); err == nil {
			return b, false, true
		}
	}
	return Base{}, false, false
}

// Codecs

type libCodec mb.Encoding

func (c libCodec) encode(data []byte) string {
	s, err := mb.Encode(mb.Encoding(c), data)
	if err != nil {
		// Only returned for encodings go-multibase does not know
		panic(err)
	}
	return strings.TrimPrefix(s, string(rune(c)))
}

func (c libCodec) decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	_, data, err := mb.Decode(string(rune(c)) + s)
	return data, err
}

var zbase32 = base32.NewEncoding("ybndrfg8ejkmcpqxot1uwisza345h769").WithPadding(base32.NoPadding)

type stdCodec struct {
	enc *base32.Encoding
}

func (c stdCodec) encode(data []byte) string {
	return c.enc.EncodeToString(data)
}

func (c stdCodec) decode(s string) ([]byte, error) {
	return c.enc.DecodeString(s)
}

// hexCodec rejects the wrong letter case, go-multibase accepts
// both for either prefix
type hexCodec struct {
	upper bool
}

func (c hexCodec) encode(data []byte) string {
	if c.upper {
		return libCodec(mb.Base16Upper).encode(data)
	}
	return libCodec(mb.Base16).encode(data)
}

func (c hexCodec) decode(s string) ([]byte, error) {
	want := strings.ToLower(s)
	if c.upper {
		want = strings.ToUpper(s)
	}
	if want != s {
		return nil, fmt.Errorf("invalid hex case")
	}
	return libCodec(mb.Base16).decode(strings.ToLower(s))
}
