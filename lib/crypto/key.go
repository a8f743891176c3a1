package crypto

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/oblivisheee/aum-engine/lib"
)

// Scheme names a signature scheme
type Scheme string

const (
	SchemeEd25519   Scheme = "ed25519"
	SchemeSecp256k1 Scheme = "secp256k1"
)

// PublicKeyI is an interface model for a cryptographic code shared openly, used to verify digital signatures of its paired private key
type PublicKeyI interface {
	// Bytes() casts the public key to bytes
	Bytes() []byte
	// ShortHash() is the 20 byte digest that short address formats are built from
	ShortHash() []byte
	// VerifyBytes() verifies a digital signature from its corresponding private key
	VerifyBytes(msg []byte, sig []byte) bool
	// Scheme() names the signature scheme
	Scheme() Scheme
	// String() returns the hex string representation
	String() string
	// Equals() compares two PublicKeys and returns true if they're equal
	Equals(PublicKeyI) bool
	// models the json.Marshaller encoding interface
	json.Marshaler
}

// PrivateKeyI is an interface model for a secret cryptographic code that is used to produce digital signatures
type PrivateKeyI interface {
	Bytes() []byte
	Sign(msg []byte) []byte
	// PublicKey() deterministically derives the paired public key
	PublicKey() PublicKeyI
	Scheme() Scheme
	// String() returns the hex string representation
	String() string
	Equals(PrivateKeyI) bool
	// models the json.Marshaller encoding interface
	json.Marshaler
}

// ParseScheme() converts a configured scheme name
func ParseScheme(s string) (Scheme, lib.ErrorI) {
	switch Scheme(strings.ToLower(s)) {
	case SchemeEd25519:
		return SchemeEd25519, nil
	case SchemeSecp256k1:
		return SchemeSecp256k1, nil
	}
	return "", ErrKeyPair("unknown key scheme " + s)
}

// NewPrivateKey() generates fresh key material for the scheme
func NewPrivateKey(scheme Scheme) (PrivateKeyI, lib.ErrorI) {
	switch scheme {
	case SchemeEd25519:
		return NewEd25519PrivateKey()
	case SchemeSecp256k1:
		return NewSECP256K1PrivateKey()
	}
	return nil, ErrGenerateKeyPair(errors.New("unknown key scheme " + string(scheme)))
}

// NewPrivateKeyFromBytes() creates a new PrivateKeyI interface from bytes, the scheme is inferred from the length
func NewPrivateKeyFromBytes(bz []byte) (PrivateKeyI, lib.ErrorI) {
	switch len(bz) {
	case Ed25519PrivKeySize:
		return BytesToED25519Private(bz)
	case SECP256K1PrivKeySize:
		return BytesToSECP256K1Private(bz)
	}
	return nil, ErrKeyInvalidBytes(len(bz))
}

// NewPrivateKeyFromString() creates a new PrivateKeyI interface from a hex string
func NewPrivateKeyFromString(hexString string) (PrivateKeyI, lib.ErrorI) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, ErrKeyInvalidHex(err)
	}
	return NewPrivateKeyFromBytes(bz)
}

// NewPublicKeyFromBytes() creates a new PublicKeyI interface from bytes, the scheme is inferred from the length
func NewPublicKeyFromBytes(bz []byte) (PublicKeyI, lib.ErrorI) {
	switch len(bz) {
	case Ed25519PubKeySize:
		return BytesToED25519Public(bz), nil
	case SECP256K1PubKeySize:
		return BytesToSECP256K1Public(bz)
	}
	return nil, ErrInvalidPublicKey(errors.New("unexpected public key length"))
}

// NewPublicKeyFromString() creates a new PublicKeyI interface from a hex string
func NewPublicKeyFromString(hexString string) (PublicKeyI, lib.ErrorI) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, ErrKeyInvalidHex(err)
	}
	return NewPublicKeyFromBytes(bz)
}

// SelfTest() signs and verifies a message with fresh key material of the scheme
func SelfTest(scheme Scheme) lib.ErrorI {
	pk, err := NewPrivateKey(scheme)
	if err != nil {
		return err
	}
	msg := []byte("self-test")
	if !pk.PublicKey().VerifyBytes(msg, pk.Sign(msg)) {
		return ErrKeyPair("signature self-test failed for " + string(scheme))
	}
	return nil
}
