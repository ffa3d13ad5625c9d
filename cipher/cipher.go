package cipher

import (
	"bytes"
	"crypto/aes"
	stdCipher "crypto/cipher"
	"crypto/sha256"
	"encoding/base64"

	"github.com/cockroachdb/errors"
)

// KeySize is the size of derived key and IV in bytes (AES-128)
const KeySize = sha256.Size / 2

// ErrDecrypt is the mark of errors returned if cipher text can not be decrypted
var ErrDecrypt = errors.New("can not decrypt")

// DeriveKeyIV returns key and IV derived from <passphrase>: first and second halves of its SHA-256 digest.
//
// The IV depends on the passphrase only, so equal plain texts give equal cipher texts.
func DeriveKeyIV(passphrase string) (key, iv []byte) {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:KeySize], sum[KeySize:]
}

// Encrypt returns <plain> encrypted with AES-CBC using <key> and <iv>, padded with PKCS#7
func Encrypt(plain, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "Create cipher")
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.Newf("IV length should be %v, got %v", block.BlockSize(), len(iv))
	}
	out := pad(plain, block.BlockSize())
	stdCipher.NewCBCEncrypter(block, iv).CryptBlocks(out, out)
	return out, nil
}

// Decrypt returns <encrypted> decrypted with AES-CBC using <key> and <iv>, with PKCS#7 padding removed.
//
// Returns error marked with ErrDecrypt if <encrypted> length or padding is invalid. Wrong key usually gives invalid
// padding, but not always: no integrity check is performed.
func Decrypt(encrypted, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "Create cipher")
	}
	if len(iv) != block.BlockSize() {
		return nil, errors.Newf("IV length should be %v, got %v", block.BlockSize(), len(iv))
	}
	if len(encrypted) == 0 || len(encrypted)%block.BlockSize() != 0 {
		err := errors.Newf("cipher text length %v is not a multiple of the block size", len(encrypted))
		return nil, errors.Mark(err, ErrDecrypt)
	}
	out := make([]byte, len(encrypted))
	stdCipher.NewCBCDecrypter(block, iv).CryptBlocks(out, encrypted)
	return unpad(out, block.BlockSize())
}

// EncryptString returns <text> encrypted with key derived from <passphrase>, encoded with standard base64
func EncryptString(text, passphrase string) (string, error) {
	key, iv := DeriveKeyIV(passphrase)
	encrypted, err := Encrypt([]byte(text), key, iv)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// DecryptString returns base64 encoded <text> decrypted with key derived from <passphrase>
func DecryptString(text, passphrase string) (string, error) {
	encrypted, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace([]byte(text))))
	if err != nil {
		return "", errors.Wrap(errors.Mark(err, ErrDecrypt), "Decode base64")
	}
	key, iv := DeriveKeyIV(passphrase)
	plain, err := Decrypt(encrypted, key, iv)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// pad returns copy of <data> with PKCS#7 padding
func pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+padLen)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// unpad returns <data> without PKCS#7 padding
func unpad(data []byte, blockSize int) ([]byte, error) {
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.Mark(errors.New("invalid padding"), ErrDecrypt)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.Mark(errors.New("invalid padding"), ErrDecrypt)
		}
	}
	return data[:len(data)-padLen], nil
}
