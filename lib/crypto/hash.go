package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
	"strings"

	"github.com/oblivisheee/aum-engine/lib"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

const (
	HashSize      = sha256.Size
	ShortHashSize = 20
)

/*
	Hash is a fixed-size digest of an input message, used as the identity of transactions and as
	the basis of the short address formats
*/

// Hash is a 32 byte digest
type Hash [HashSize]byte

// HashAlgorithm names a digest function
type HashAlgorithm string

const (
	SHA256    HashAlgorithm = "sha256"
	BLAKE3    HashAlgorithm = "blake3"
	Keccak256 HashAlgorithm = "keccak256"
)

// ParseHashAlgorithm() converts a configured algorithm name
func ParseHashAlgorithm(s string) (HashAlgorithm, lib.ErrorI) {
	switch a := HashAlgorithm(strings.ToLower(s)); a {
	case SHA256, BLAKE3, Keccak256:
		return a, nil
	}
	return "", ErrHashing("unknown hash algorithm " + s)
}

// Hasher() returns a streaming hash.Hash for the algorithm
func (a HashAlgorithm) Hasher() (hash.Hash, lib.ErrorI) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(HashSize, nil), nil
	case Keccak256:
		return sha3.NewLegacyKeccak256(), nil
	}
	return nil, ErrHashing("unknown hash algorithm " + string(a))
}

// Sum() digests msg with the algorithm
func (a HashAlgorithm) Sum(msg []byte) (h Hash, err lib.ErrorI) {
	hasher, err := a.Hasher()
	if err != nil {
		return
	}
	if _, e := hasher.Write(msg); e != nil {
		return h, ErrHashing(e.Error())
	}
	return HashFromBytes(hasher.Sum(nil))
}

// Sum256() executes the global hashing algorithm on input bytes
func Sum256(msg []byte) Hash { return sha256.Sum256(msg) }

// ShortHash() executes the global hashing algorithm on input bytes and truncates the output to 20 bytes
func ShortHash(msg []byte) []byte {
	h := sha256.Sum256(msg)
	return h[:ShortHashSize]
}

// HashFromBytes() converts a 32 byte slice into a Hash
func HashFromBytes(bz []byte) (h Hash, err lib.ErrorI) {
	if len(bz) != HashSize {
		return h, ErrHashInvalidBytes(len(bz))
	}
	copy(h[:], bz)
	return
}

// HashFromString() converts a hex string into a Hash
func HashFromString(s string) (Hash, lib.ErrorI) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, ErrHashInvalidHex(err)
	}
	return HashFromBytes(bz)
}

// Bytes() returns a copy of the digest
func (h Hash) Bytes() []byte { return bytes.Clone(h[:]) }

// String() returns the hex representation
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Equals() compares two digests
func (h Hash) Equals(o Hash) bool { return h == o }

// IsZero() returns true for the empty digest
func (h Hash) IsZero() bool { return h == Hash{} }

// MarshalJSON() is the json.Marshaller implementation for Hash
func (h Hash) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }

// UnmarshalJSON() is the json.Unmarshaler implementation for Hash
func (h *Hash) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	got, err := HashFromString(s)
	if err != nil {
		return err
	}
	*h = got
	return nil
}
