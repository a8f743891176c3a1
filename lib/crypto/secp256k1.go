package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/oblivisheee/aum-engine/lib"
	"golang.org/x/crypto/ripemd160"
)

/* This file implements SECP256K1 keys with compressed (33 byte) public keys */

const (
	SECP256K1PrivKeySize   = 32
	SECP256K1PubKeySize    = 33
	SECP256K1SignatureSize = 64
)

// Private Key Below

// ensure SECP256K1PrivateKey conforms to the PrivateKeyI interface
var _ PrivateKeyI = &SECP256K1PrivateKey{}

// SECP256K1PrivateKey is the private key of a cryptographic key pair used in elliptic curve signing and verification, based on the SECP256K1 elliptic curve
type SECP256K1PrivateKey struct {
	*ecdsa.PrivateKey
}

// NewSECP256K1PrivateKey() generates a new SECP256K1 private key
func NewSECP256K1PrivateKey() (PrivateKeyI, lib.ErrorI) {
	pk, err := ethCrypto.GenerateKey()
	if err != nil {
		return nil, ErrGenerateKeyPair(err)
	}
	return &SECP256K1PrivateKey{PrivateKey: pk}, nil
}

// BytesToSECP256K1Private() converts bytes to SECP256K1 private key using go-ethereum
func BytesToSECP256K1Private(b []byte) (PrivateKeyI, lib.ErrorI) {
	pk, err := ethCrypto.ToECDSA(b)
	if err != nil {
		return nil, ErrInvalidSecretKey(err)
	}
	return &SECP256K1PrivateKey{PrivateKey: pk}, nil
}

// Sign() returns digital signature bytes from the message
func (s *SECP256K1PrivateKey) Sign(msg []byte) []byte {
	sig, _ := ethCrypto.Sign(Sum256(msg).Bytes(), s.PrivateKey)
	// the 1-byte ethereum 'recovery byte' is omitted
	return sig[:len(sig)-1]
}

// PublicKey() returns the public pair to this private key
func (s *SECP256K1PrivateKey) PublicKey() PublicKeyI {
	return &SECP256K1PublicKey{PublicKey: &s.PrivateKey.PublicKey}
}

// Bytes() returns the byte representation of the private key
func (s *SECP256K1PrivateKey) Bytes() []byte { return ethCrypto.FromECDSA(s.PrivateKey) }

// Scheme() returns secp256k1
func (s *SECP256K1PrivateKey) Scheme() Scheme { return SchemeSecp256k1 }

// String() returns the hex string representation of the private key
func (s *SECP256K1PrivateKey) String() string { return hex.EncodeToString(s.Bytes()) }

// Equals() compares to private keys and returns true if they are equal
func (s *SECP256K1PrivateKey) Equals(i PrivateKeyI) bool { return bytes.Equal(s.Bytes(), i.Bytes()) }

// MarshalJSON() is the json.Marshaller implementation for SECP256K1PrivateKey
func (s *SECP256K1PrivateKey) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Public Key Below

// ensure SECP256K1PublicKey conforms to the PublicKeyI interface
var _ PublicKeyI = &SECP256K1PublicKey{}

// SECP256K1PublicKey is the public key of a cryptographic key pair used in elliptic curve signing and verification, based on the SECP256K1 elliptic curve
type SECP256K1PublicKey struct {
	*ecdsa.PublicKey
}

// BytesToSECP256K1Public() returns SECP256K1PublicKey from compressed bytes
func BytesToSECP256K1Public(b []byte) (PublicKeyI, lib.ErrorI) {
	pub, err := ethCrypto.DecompressPubkey(b)
	if err != nil {
		return nil, ErrInvalidPublicKey(err)
	}
	return &SECP256K1PublicKey{PublicKey: pub}, nil
}

// ShortHash() is RIPEMD-160(SHA-256(pubkey)), the most common addressing digest for SECP256K1 public keys
func (s *SECP256K1PublicKey) ShortHash() []byte {
	hasher := ripemd160.New()
	hasher.Write(Sum256(s.Bytes()).Bytes())
	return hasher.Sum(nil)
}

// VerifyBytes() returns true if the digital signature is valid for this public key and the given message
func (s *SECP256K1PublicKey) VerifyBytes(msg []byte, sig []byte) bool {
	if len(sig) != SECP256K1SignatureSize {
		return false
	}
	return ethCrypto.VerifySignature(s.Bytes(), Sum256(msg).Bytes(), sig)
}

// Bytes() returns the compressed byte representation of the Public Key
func (s *SECP256K1PublicKey) Bytes() []byte { return ethCrypto.CompressPubkey(s.PublicKey) }

// Scheme() returns secp256k1
func (s *SECP256K1PublicKey) Scheme() Scheme { return SchemeSecp256k1 }

// String() returns the hex string representation of the public key
func (s *SECP256K1PublicKey) String() string { return hex.EncodeToString(s.Bytes()) }

// Equals() compares two SECP256K1PublicKey objects and returns true if they're equal
func (s *SECP256K1PublicKey) Equals(i PublicKeyI) bool { return bytes.Equal(s.Bytes(), i.Bytes()) }

// MarshalJSON() is the json.Marshaller implementation for SECP256K1PublicKey
func (s *SECP256K1PublicKey) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }
