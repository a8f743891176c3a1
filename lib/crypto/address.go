package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/mr-tron/base58"
	"github.com/oblivisheee/aum-engine/lib"
)

const (
	AddressSize = ShortHashSize
	DefaultHRP  = "aum"
)

// Format is the textual encoding an address is displayed and parsed in
type Format string

const (
	FormatHex    Format = "hex"    // 20 byte short hash, lower case hex
	FormatBase58 Format = "base58" // the full public key, base58
	FormatBech32 Format = "bech32" // 20 byte short hash, bech32 with the network prefix
)

// ParseFormat() converts a configured format name
func ParseFormat(s string) (Format, lib.ErrorI) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHex, FormatBase58, FormatBech32:
		return f, nil
	}
	return "", ErrUnsupportedAddressFormat(s)
}

// AddressI is an interface model for the identity of a wallet
type AddressI interface {
	// Bytes() returns the raw payload (short hash or public key depending on the format)
	Bytes() []byte
	// String() returns the canonical textual form
	String() string
	// Format() returns the textual encoding
	Format() Format
	Equals(AddressI) bool
	// models the json.Marshaller encoding interface
	json.Marshaler
}

// ensure Address satisfies the AddressI interface
var _ AddressI = &Address{}

// Address is a formatted wallet identity
type Address struct {
	format Format
	hrp    string
	bz     []byte
}

// NewAddressFromPublicKey() derives the address of a public key in a format
func NewAddressFromPublicKey(pub PublicKeyI, format Format, hrp string) (AddressI, lib.ErrorI) {
	if pub == nil || len(pub.Bytes()) == 0 {
		return nil, ErrAddressInvalidPublicKey(ErrKeyPair("empty public key"))
	}
	if hrp == "" {
		hrp = DefaultHRP
	}
	switch format {
	case FormatHex:
		return &Address{format: FormatHex, bz: pub.ShortHash()}, nil
	case FormatBech32:
		return &Address{format: FormatBech32, hrp: hrp, bz: pub.ShortHash()}, nil
	case FormatBase58:
		return &Address{format: FormatBase58, bz: bytes.Clone(pub.Bytes())}, nil
	}
	return nil, ErrUnsupportedAddressFormat(string(format))
}

// NewAddressFromPrivateKey() derives the address of the public pair of a secret key
func NewAddressFromPrivateKey(sk PrivateKeyI, format Format, hrp string) (AddressI, lib.ErrorI) {
	if sk == nil || len(sk.Bytes()) == 0 {
		return nil, ErrAddressInvalidSecretKey()
	}
	return NewAddressFromPublicKey(sk.PublicKey(), format, hrp)
}

// ParseAddress() parses the textual form of any supported format
// An empty hrp accepts bech32 addresses of any network
func ParseAddress(s, hrp string) (AddressI, lib.ErrorI) {
	if s == "" {
		return nil, ErrInvalidAddressFormat("empty address")
	}
	// hex: exactly 40 hex characters
	if len(s) == AddressSize*2 {
		if bz, err := hex.DecodeString(s); err == nil {
			return &Address{format: FormatHex, bz: bz}, nil
		}
	}
	// bech32: human readable part + separator + checksummed data
	if strings.LastIndexByte(s, '1') > 0 {
		if gotHRP, data, err := bech32.Decode(s); err == nil {
			if hrp != "" && gotHRP != hrp {
				return nil, ErrUnsupportedAddressFormat("bech32 prefix " + gotHRP)
			}
			bz, err := bech32.ConvertBits(data, 5, 8, false)
			if err != nil || len(bz) != AddressSize {
				return nil, ErrParseAddress(s)
			}
			return &Address{format: FormatBech32, hrp: gotHRP, bz: bz}, nil
		}
	}
	// base58: an encoded public key
	if bz, err := base58.Decode(s); err == nil && (len(bz) == Ed25519PubKeySize || len(bz) == SECP256K1PubKeySize) {
		if _, e := NewPublicKeyFromBytes(bz); e != nil {
			return nil, ErrAddressInvalidPublicKey(e)
		}
		return &Address{format: FormatBase58, bz: bz}, nil
	}
	return nil, ErrParseAddress(s)
}

// IsValidAddress() returns true if ParseAddress succeeds
func IsValidAddress(s, hrp string) bool {
	_, err := ParseAddress(s, hrp)
	return err == nil
}

// Bytes() returns a copy of the payload
func (a *Address) Bytes() []byte { return bytes.Clone(a.bz) }

// Format() returns the textual encoding
func (a *Address) Format() Format { return a.format }

// String() returns the canonical textual form
func (a *Address) String() string {
	switch a.format {
	case FormatBech32:
		data, err := bech32.ConvertBits(a.bz, 8, 5, true)
		if err != nil {
			return ""
		}
		s, err := bech32.Encode(a.hrp, data)
		if err != nil {
			return ""
		}
		return s
	case FormatBase58:
		return base58.Encode(a.bz)
	default:
		return hex.EncodeToString(a.bz)
	}
}

// Equals() compares format, network and payload
func (a *Address) Equals(i AddressI) bool {
	if i == nil {
		return false
	}
	o, ok := i.(*Address)
	if !ok {
		return a.String() == i.String()
	}
	return a.format == o.format && a.hrp == o.hrp && bytes.Equal(a.bz, o.bz)
}

// MarshalJSON() is the json.Marshaller implementation for Address
func (a *Address) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// UnmarshalJSON() is the json.Unmarshaler implementation for Address
func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	got, err := ParseAddress(s, "")
	if err != nil {
		return err
	}
	*a = *got.(*Address)
	return nil
}
