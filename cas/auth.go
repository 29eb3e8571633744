package cas

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"

	"cpk/ceramic"
)

var ErrUnauthorized = errors.New("unauthorized")

type AuthPayload struct {
	URL    string `json:"url"`
	Nonce  string `json:"nonce"`
	Digest string `json:"digest"`
}

// Signer issues bearer tokens for anchor requests
type Signer struct {
	key        ed25519.PrivateKey
	controller string
	kid        string
}

// NewSigner uses the key and controller from c, generating a key
// when none is configured
func NewSigner(c ClientConfig) (*Signer, error) {
	var key ed25519.PrivateKey
	if c.NodePrivateKey != "" {
		k, err := ceramic.PrivateKeyFromHex(c.NodePrivateKey)
		if err != nil {
			return nil, fmt.Errorf("node private key: %w", err)
		}
		key = k
	} else {
		_, k, err := ceramic.GenerateDIDKey()
		if err != nil {
			return nil, err
		}
		key = k
	}

	did := ceramic.DIDKey(key.Public().(ed25519.PublicKey))
	controller := c.NodeController
	if controller == "" {
		controller = did
	}

	return &Signer{
		key:        key,
		controller: controller,
		kid:        controller + "#" + strings.TrimPrefix(did, "did:key:"),
	}, nil
}

func (s *Signer) Controller() string {
	return s.controller
}

// AuthHeader signs {url, nonce, digest} as a compact EdDSA JWS
func (s *Signer) AuthHeader(url string, digest cid.Cid) (string, error) {
	payload, err := json.Marshal(AuthPayload{
		URL:    url,
		Nonce:  uuid.NewString(),
		Digest: digest.String(),
	})
	if err != nil {
		return "", err
	}

	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: jose.EdDSA,
		Key:       jose.JSONWebKey{Key: s.key, KeyID: s.kid},
	}, nil)
	if err != nil {
		return "", err
	}
	jws, err := signer.Sign(payload)
	if err != nil {
		return "", err
	}
	compact, err := jws.CompactSerialize()
	if err != nil {
		return "", err
	}

	return "Bearer " + compact, nil
}

// VerifyAuthHeader checks the bearer JWS against the did:key named
// by its kid and returns the payload and the kid
func VerifyAuthHeader(header string) (AuthPayload, string, error) {
	compact, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return AuthPayload{}, "", fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	jws, err := jose.ParseSigned(compact, []jose.SignatureAlgorithm{jose.EdDSA})
	if err != nil {
		return AuthPayload{}, "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if len(jws.Signatures) != 1 {
		return AuthPayload{}, "", fmt.Errorf("%w: expected one signature", ErrUnauthorized)
	}

	kid := jws.Signatures[0].Protected.KeyID
	_, fragment, _ := strings.Cut(kid, "#")
	if fragment == "" {
		return AuthPayload{}, "", fmt.Errorf("%w: kid %q has no key fragment", ErrUnauthorized, kid)
	}
	pub, err := ceramic.ParseDIDKey("did:key:" + fragment)
	if err != nil {
		return AuthPayload{}, "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	data, err := jws.Verify(pub)
	if err != nil {
		return AuthPayload{}, "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	var p AuthPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return AuthPayload{}, "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return p, kid, nil
}
