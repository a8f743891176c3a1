package crypto

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
)

// ADDRESS ERRORS

func ErrInvalidAddressFormat(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeAddressInvalidFormat, lib.AddressModule, fmt.Sprintf("Invalid address format: %s", reason))
}

func ErrParseAddress(s string) lib.ErrorI {
	return lib.NewError(lib.CodeAddressParse, lib.AddressModule, fmt.Sprintf("Failed to parse address %q", s))
}

func ErrUnsupportedAddressFormat(format string) lib.ErrorI {
	return lib.NewError(lib.CodeAddressUnsupportedFormat, lib.AddressModule, fmt.Sprintf("Unsupported address format: %s", format))
}

func ErrAddressInvalidPublicKey(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeAddressInvalidPublicKey, lib.AddressModule, "Invalid public key: %s", err)
}

func ErrAddressInvalidSecretKey() lib.ErrorI {
	return lib.NewError(lib.CodeAddressInvalidSecretKey, lib.AddressModule, "Invalid secret key")
}

// KEY PAIR ERRORS

func ErrGenerateKeyPair(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeKeyPairGenerate, lib.KeyPairModule, "Failed to generate key pair: %s", err)
}

func ErrKeyInvalidBytes(size int) lib.ErrorI {
	return lib.NewError(lib.CodeKeyPairInvalidBytes, lib.KeyPairModule, fmt.Sprintf("Invalid byte representation: unexpected length %d", size))
}

func ErrKeyInvalidHex(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeKeyPairInvalidHex, lib.KeyPairModule, "Invalid hexadecimal representation: %s", err)
}

func ErrInvalidPublicKey(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeKeyPairInvalidPublicKey, lib.KeyPairModule, "Invalid public key: %s", err)
}

func ErrInvalidSecretKey(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeKeyPairInvalidSecretKey, lib.KeyPairModule, "Invalid secret key: %s", err)
}

func ErrKeyPair(msg string) lib.ErrorI {
	return lib.NewError(lib.CodeKeyPairCustom, lib.KeyPairModule, msg)
}

// HASH ERRORS

func ErrHashInvalidBytes(size int) lib.ErrorI {
	return lib.NewError(lib.CodeHashInvalidBytes, lib.HashModule, fmt.Sprintf("Invalid byte representation: expected %d bytes, got %d", HashSize, size))
}

func ErrHashInvalidHex(err error) lib.ErrorI {
	return lib.WrapError(lib.CodeHashInvalidHex, lib.HashModule, "Invalid hexadecimal representation: %s", err)
}

func ErrHashing(msg string) lib.ErrorI {
	return lib.NewError(lib.CodeHashing, lib.HashModule, fmt.Sprintf("Hashing error: %s", msg))
}
