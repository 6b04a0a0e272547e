// Package cipher reverses the billing API's payload encoding.
//
// A payload is the 16 character AES-128 key followed by the base64 encoded
// ciphertext. The ciphertext is AES in ECB mode with PKCS#7 padding.
package cipher

import (
	"bytes"
	"crypto/aes"
	stdcipher "crypto/cipher"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// KeyLength is the number of characters at the head of a payload that form the key
	KeyLength = 16

	// EmptyDocument is what Decrypt yields for any payload it cannot open
	EmptyDocument = "{}"
)

var (
	// ErrShortPayload is returned when the payload is too short to hold a key
	ErrShortPayload = errors.New("payload shorter than key")

	// ErrKeySize is returned when the key is not 128 bits
	ErrKeySize = errors.New("key is not 128 bits")

	// ErrBlockSize is returned when the ciphertext is not a whole number of blocks
	ErrBlockSize = errors.New("ciphertext is not a multiple of the block size")

	// ErrPadding is returned when PKCS#7 padding is malformed
	ErrPadding = errors.New("invalid padding")

	// ErrNotUTF8 is returned when the plaintext is not valid UTF-8
	ErrNotUTF8 = errors.New("plaintext is not valid UTF-8")
)

// Decrypt opens a payload and returns its plain JSON text. Any failure
// yields EmptyDocument, so callers see "no data" rather than an error.
func Decrypt(payload string) string {
	text, err := Open(payload)
	if err != nil {
		return EmptyDocument
	}
	return text
}

// Open opens a payload and reports why it could not be opened.
func Open(payload string) (string, error) {
	key, body, err := split(payload)
	if err != nil {
		return "", err
	}

	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(stripSpace(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to decode ciphertext")
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return "", ErrBlockSize
	}

	plain := make([]byte, len(ciphertext))
	newECBDecrypter(block).CryptBlocks(plain, ciphertext)

	plain, err = unpad(plain, block.BlockSize())
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plain) {
		return "", ErrNotUTF8
	}

	return string(plain), nil
}

// Seal produces a payload in the API's format: key followed by the base64
// ciphertext of plaintext.
func Seal(key, plaintext string) (string, error) {
	block, err := newBlock([]byte(key))
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(key) != KeyLength {
		return "", ErrKeySize
	}

	padded := pad([]byte(plaintext), block.BlockSize())
	ciphertext := make([]byte, len(padded))
	newECBEncrypter(block).CryptBlocks(ciphertext, padded)

	return key + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// split cuts the payload after KeyLength characters
func split(payload string) ([]byte, string, error) {
	count := 0
	for i := range payload {
		if count == KeyLength {
			return []byte(payload[:i]), payload[i:], nil
		}
		count++
	}
	if count == KeyLength {
		return []byte(payload), "", nil
	}
	return nil, "", ErrShortPayload
}

func newBlock(key []byte) (stdcipher.Block, error) {
	if len(key) != KeyLength {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	return block, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrPadding
		}
	}
	return data[:len(data)-n], nil
}

// ecb implements cipher.BlockMode without chaining
type ecb struct {
	block   stdcipher.Block
	encrypt bool
}

func newECBDecrypter(block stdcipher.Block) stdcipher.BlockMode {
	return &ecb{block: block}
}

func newECBEncrypter(block stdcipher.Block) stdcipher.BlockMode {
	return &ecb{block: block, encrypt: true}
}

func (e *ecb) BlockSize() int {
	return e.block.BlockSize()
}

func (e *ecb) CryptBlocks(dst, src []byte) {
	size := e.block.BlockSize()
	if len(src)%size != 0 {
		panic("cipher: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("cipher: output smaller than input")
	}
	for len(src) > 0 {
		if e.encrypt {
			e.block.Encrypt(dst[:size], src[:size])
		} else {
			e.block.Decrypt(dst[:size], src[:size])
		}
		src = src[size:]
		dst = dst[size:]
	}
}
