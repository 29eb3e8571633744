package ceramic

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	mb "github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
)

const didKeyPrefix = "did:key:"

// DIDKey is the did:key method identifier of an ed25519 key
func DIDKey(pub ed25519.PublicKey) string {
	b := varint.ToUvarint(uint64(multicodec.Ed25519Pub))
	s, err := mb.Encode(mb.Base58BTC, append(b, pub...))
	if err != nil {
		panic(err)
	}
	return didKeyPrefix + s
}

// ParseDIDKey extracts the ed25519 public key from a did:key,
// any fragment is ignored
func ParseDIDKey(did string) (ed25519.PublicKey, error) {
	did, _, _ = strings.Cut(did, "#")
	if !strings.HasPrefix(did, didKeyPrefix) {
		return nil, fmt.Errorf("not a did:key: %s", did)
	}

	_, b, err := mb.Decode(strings.TrimPrefix(did, didKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode did:key: %w", err)
	}
	code, n, err := varint.FromUvarint(b)
	if err != nil {
		return nil, fmt.Errorf("decode did:key: %w", err)
	}
	if multicodec.Code(code) != multicodec.Ed25519Pub {
		return nil, fmt.Errorf("unsupported did:key type: %s", multicodec.Code(code))
	}
	if len(b[n:]) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 key length: %d", len(b[n:]))
	}
	return ed25519.PublicKey(b[n:]), nil
}

// GenerateDIDKey returns a fresh did:key with its private key
func GenerateDIDKey() (string, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, err
	}
	return DIDKey(pub), priv, nil
}

// PrivateKeyFromHex parses a hex encoded 32 byte ed25519 seed
func PrivateKeyFromHex(s string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func GeneratePeerID() (peer.ID, crypto.PrivKey, error) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return "", nil, err
	}
	id, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return "", nil, err
	}
	return id, priv, nil
}

// PeerIDFromKey reads a protobuf marshalled libp2p private
// key, hex encoding is detected and undone first
func PeerIDFromKey(b []byte) (peer.ID, error) {
	if dec, err := hex.DecodeString(strings.TrimSpace(string(b))); err == nil {
		b = dec
	}

	priv, err := crypto.UnmarshalPrivateKey(b)
	if err != nil {
		return "", fmt.Errorf("unmarshal private key: %w", err)
	}
	return peer.IDFromPrivateKey(priv)
}
