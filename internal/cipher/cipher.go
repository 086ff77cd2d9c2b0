// Package cipher decrypts the per-game regulation envelopes that wrap a
// BND4 archive on disk. DS2 uses AES-128-CTR; DS3 and Elden Ring share an
// AES-256-CBC scheme with no padding, decrypting only whole 16-byte blocks
// and leaving any trailing partial block untouched.
//
// There is no third-party AES implementation in this module's dependency
// pack (see DESIGN.md), so this package is one of the few built directly on
// crypto/aes and crypto/cipher from the standard library.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/scigolib/paramdex/internal/utils"
)

// DS2Key is the fixed AES-128 key used for all DS2 regulation.bin files.
var DS2Key = [16]byte{
	0x40, 0x17, 0x81, 0x30, 0xDF, 0x0A, 0x94, 0x54, 0x33, 0x09, 0xE1, 0x71, 0xEC, 0xBF, 0x25, 0x4C,
}

// DS3Key is the fixed AES-256 key used for all DS3 regulation.bin files.
var DS3Key = [32]byte([]byte("ds3#jn/8_7(rsY9pg55GFN7VFL#+3n/)"))

// ERKey is the fixed AES-256 key used for all Elden Ring regulation.bin files.
var ERKey = [32]byte{
	0x99, 0xBF, 0xFC, 0x36, 0x6A, 0x6B, 0xC8, 0xC6, 0xF5, 0x82, 0x7D, 0x09, 0x36, 0x02, 0xD6, 0x76,
	0xC4, 0x28, 0x92, 0xA0, 0x1C, 0x20, 0x7F, 0xB0, 0x24, 0xD3, 0xAF, 0x4E, 0x49, 0x3F, 0xEF, 0x99,
}

// DecryptDS2 decrypts a DS2 regulation envelope with AES-128-CTR. The IV is
// built from the envelope: byte 0 is fixed to 0x80, bytes 1..=11 are copied
// from the encrypted stream's first 11 bytes, and the last 4 bytes are a
// fixed counter tail ending in 0x01. The ciphertext itself begins at offset
// 32 in the envelope.
func DecryptDS2(encrypted []byte) ([]byte, error) {
	const prologueLen = 11
	const ciphertextOffset = 32
	if len(encrypted) < ciphertextOffset {
		return nil, utils.UnexpectedEOF("ds2 regulation envelope")
	}

	var iv [16]byte
	iv[0] = 0x80
	copy(iv[1:1+prologueLen], encrypted[:prologueLen])
	iv[15] = 1

	block, err := aes.NewCipher(DS2Key[:])
	if err != nil {
		return nil, utils.WrapError("ds2 aes key", err)
	}
	stream := cipher.NewCTR(block, iv[:])

	ciphertext := encrypted[ciphertextOffset:]
	out := make([]byte, len(ciphertext))
	stream.XORKeyStream(out, ciphertext)
	return out, nil
}

// DecryptDS3 decrypts a DS3 regulation envelope with AES-256-CBC.
func DecryptDS3(encrypted []byte) ([]byte, error) {
	return decryptCBC256(DS3Key[:], encrypted)
}

// DecryptER decrypts an Elden Ring regulation envelope with AES-256-CBC.
func DecryptER(encrypted []byte) ([]byte, error) {
	return decryptCBC256(ERKey[:], encrypted)
}

// decryptCBC256 splits a 16-byte IV prefix off encrypted and CBC-decrypts
// the remainder in place, block by block, with no padding removal: any
// trailing bytes that don't make a full 16-byte block are left as-is,
// mirroring the source tool's raw block-slice decrypt.
func decryptCBC256(key, encrypted []byte) ([]byte, error) {
	const ivLen = 16
	if len(encrypted) < ivLen {
		return nil, utils.UnexpectedEOF("cbc regulation envelope")
	}
	iv := encrypted[:ivLen]
	blob := encrypted[ivLen:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, utils.WrapError("cbc aes key", err)
	}
	mode := cipher.NewCBCDecrypter(block, iv)

	out := make([]byte, len(blob))
	copy(out, blob)

	wholeBlocks := (len(out) / aes.BlockSize) * aes.BlockSize
	if wholeBlocks > 0 {
		mode.CryptBlocks(out[:wholeBlocks], out[:wholeBlocks])
	}
	return out, nil
}
