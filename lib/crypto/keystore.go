package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	"github.com/oblivisheee/aum-engine/lib"
	"golang.org/x/crypto/argon2"
)

/* This file implements password based encryption of secret keys at rest */

// EncryptedPrivateKey is a secret key sealed with a password derived AES-GCM key
type EncryptedPrivateKey struct {
	PublicKey string `json:"publicKey"`
	Salt      string `json:"salt"`
	Nonce     string `json:"nonce"`
	Encrypted string `json:"encrypted"`
}

// EncryptPrivateKey() seals the secret key bytes with a key derived from the password and a random salt
func EncryptPrivateKey(pk PrivateKeyI, password []byte) (*EncryptedPrivateKey, lib.ErrorI) {
	// generate random 16 bytes salt
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, ErrKeyPair("failed to read salt: " + err.Error())
	}
	// derive an AES-GCM encryption key using the password and salt
	gcm, err := kdf(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, e := rand.Read(nonce); e != nil {
		return nil, ErrKeyPair("failed to read nonce: " + e.Error())
	}
	// encrypt the private key with AES-GCM using the derived key and nonce
	return &EncryptedPrivateKey{
		PublicKey: pk.PublicKey().String(),
		Salt:      hex.EncodeToString(salt),
		Nonce:     hex.EncodeToString(nonce),
		Encrypted: hex.EncodeToString(gcm.Seal(nil, nonce, pk.Bytes(), nil)),
	}, nil
}

// DecryptPrivateKey() opens a sealed secret key and checks it against the recorded public key
func DecryptPrivateKey(epk *EncryptedPrivateKey, password []byte) (PrivateKeyI, lib.ErrorI) {
	salt, e := hex.DecodeString(epk.Salt)
	if e != nil {
		return nil, ErrKeyInvalidHex(e)
	}
	nonce, e := hex.DecodeString(epk.Nonce)
	if e != nil {
		return nil, ErrKeyInvalidHex(e)
	}
	encrypted, e := hex.DecodeString(epk.Encrypted)
	if e != nil {
		return nil, ErrKeyInvalidHex(e)
	}
	gcm, err := kdf(password, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, ErrKeyPair("invalid nonce length")
	}
	plainText, e := gcm.Open(nil, nonce, encrypted, nil)
	if e != nil {
		return nil, ErrKeyPair("invalid password or corrupted key")
	}
	pk, err := NewPrivateKeyFromBytes(plainText)
	if err != nil {
		return nil, err
	}
	if pk.PublicKey().String() != epk.PublicKey {
		return nil, ErrKeyPair("decrypted key does not match its public key")
	}
	return pk, nil
}

// kdf() uses Argon2id to derive a 32 byte AES key from the password and salt
func kdf(password, salt []byte) (cipher.AEAD, lib.ErrorI) {
	key := argon2.IDKey(password, salt, 3, 32*1024, 4, 32)
	// init AES block cipher with the derived key
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrKeyPair(err.Error())
	}
	// init AES-GCM mode with the AES cipher block
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrKeyPair(err.Error())
	}
	return gcm, nil
}
