package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/oblivisheee/aum-engine/lib"
)

const (
	Ed25519PrivKeySize   = ed25519.PrivateKeySize
	Ed25519PubKeySize    = ed25519.PublicKeySize
	Ed25519SignatureSize = ed25519.SignatureSize
)

// Private Key Below

// ED25519PrivateKey is the private key of a cryptographic key pair used in elliptic curve signing and verification, based on the Curve25519 elliptic curve
type ED25519PrivateKey struct{ ed25519.PrivateKey }

// ensure ED25519PrivateKey satisfies PrivateKeyI interface
var _ PrivateKeyI = &ED25519PrivateKey{}

// NewEd25519PrivateKey() generates a new ED25519 private key
func NewEd25519PrivateKey() (PrivateKeyI, lib.ErrorI) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, ErrGenerateKeyPair(err)
	}
	return &ED25519PrivateKey{PrivateKey: priv}, nil
}

// BytesToED25519Private() creates a new PrivateKeyI interface from ED25519 bytes
// The trailing 32 bytes must be the public key derived from the leading seed
func BytesToED25519Private(bz []byte) (PrivateKeyI, lib.ErrorI) {
	if len(bz) != Ed25519PrivKeySize {
		return nil, ErrKeyInvalidBytes(len(bz))
	}
	derived := ed25519.NewKeyFromSeed(bz[:ed25519.SeedSize])
	if !bytes.Equal(derived, bz) {
		return nil, ErrInvalidSecretKey(errors.New("public half does not match the seed"))
	}
	return &ED25519PrivateKey{PrivateKey: derived}, nil
}

// String() returns the hex string representation of the private key
func (p *ED25519PrivateKey) String() string { return hex.EncodeToString(p.Bytes()) }

// Bytes() casts the private key to bytes
func (p *ED25519PrivateKey) Bytes() []byte { return p.PrivateKey }

// Sign() returns the digital signature out of an Ed25519 private key sign function given a message
func (p *ED25519PrivateKey) Sign(msg []byte) []byte { return ed25519.Sign(p.PrivateKey, msg) }

// PublicKey() returns the public pair to this private key
func (p *ED25519PrivateKey) PublicKey() PublicKeyI {
	return &ED25519PublicKey{PublicKey: p.PrivateKey.Public().(ed25519.PublicKey)}
}

// Scheme() returns ed25519
func (p *ED25519PrivateKey) Scheme() Scheme { return SchemeEd25519 }

// Equals() compares two private keys
func (p *ED25519PrivateKey) Equals(i PrivateKeyI) bool { return bytes.Equal(p.Bytes(), i.Bytes()) }

// MarshalJSON() is the json.Marshaller implementation for ED25519PrivateKey
func (p *ED25519PrivateKey) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

// Public Key Below

// ED25519PublicKey is the public key of a cryptographic key pair used in elliptic curve signing and verification, based on the Curve25519 elliptic curve
type ED25519PublicKey struct{ ed25519.PublicKey }

// ensure ED25519PublicKey satisfies PublicKeyI interface
var _ PublicKeyI = &ED25519PublicKey{}

// BytesToED25519Public() creates a new PublicKeyI interface from ED25519 bytes
func BytesToED25519Public(bz []byte) PublicKeyI { return &ED25519PublicKey{PublicKey: bz} }

// ShortHash() returns the first 20 bytes of the sha256 of the public key
func (p *ED25519PublicKey) ShortHash() []byte { return ShortHash(p.Bytes()) }

// Bytes() casts the public key to bytes
func (p *ED25519PublicKey) Bytes() []byte { return p.PublicKey }

// VerifyBytes() returns true if the digital signature is valid for this public key and the given message
func (p *ED25519PublicKey) VerifyBytes(msg []byte, sig []byte) bool {
	if len(sig) != Ed25519SignatureSize || len(p.PublicKey) != Ed25519PubKeySize {
		return false
	}
	return ed25519.Verify(p.PublicKey, msg, sig)
}

// Scheme() returns ed25519
func (p *ED25519PublicKey) Scheme() Scheme { return SchemeEd25519 }

// String() returns the hex string representation of the public key
func (p *ED25519PublicKey) String() string { return hex.EncodeToString(p.Bytes()) }

// Equals() compares two public keys
func (p *ED25519PublicKey) Equals(i PublicKeyI) bool { return bytes.Equal(p.Bytes(), i.Bytes()) }

// MarshalJSON() is the json.Marshaller implementation for ED25519PublicKey
func (p *ED25519PublicKey) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }
