package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

var (
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	ErrInvalidBool   = errors.New("invalid bool encoding")
	ErrInvalidOption = errors.New("invalid option encoding")
	ErrInvalidString = errors.New("string is not valid utf-8")
)

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutOptionalKey32(dst []byte, src []byte, offset *int, optionSize int) {
	if len(src) > 0 {
		dst[0] = 1
		copy(dst[optionSize:], src)
	}

	*offset += optionSize + ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int, optionSize int) {
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[optionSize:], *v)
	}
	*offset += optionSize + 8
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int, optionSize int) {
	if src[0] == 1 {
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[optionSize:])
	}
	*offset += optionSize + ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int, optionSize int) {
	if src[0] == 1 {
		val := binary.LittleEndian.Uint64(src[optionSize:])
		*dst = &val
	}
	*offset += optionSize + 8
}

func PutInt64(dst []byte, v int64, offset *int) {
	binary.LittleEndian.PutUint64(dst, uint64(v))
	*offset += 8
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst, v)
	*offset += 2
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	*offset += 1
}

// PutString writes a borsh string: a u32 length prefix followed by the bytes.
func PutString(dst []byte, v string, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(v)))
	copy(dst[4:], v)
	*offset += StringSize(v)
}

// StringSize is the encoded size of a borsh string.
func StringSize(v string) int {
	return 4 + len(v)
}

func GetInt64(src []byte, dst *int64, offset *int) {
	*dst = int64(binary.LittleEndian.Uint64(src))
	*offset += 8
}

func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src)
	*offset += 2
}

// GetBool reads a borsh bool. Only 0 and 1 are valid encodings.
func GetBool(src []byte, dst *bool, offset *int) error {
	switch src[0] {
	case 0:
		*dst = false
	case 1:
		*dst = true
	default:
		return ErrInvalidBool
	}
	*offset += 1
	return nil
}

// GetString reads a borsh string, failing if src is too short for the
// declared length or the bytes aren't valid UTF-8.
func GetString(src []byte, dst *string, offset *int) error {
	if len(src) < 4 {
		return ErrUnexpectedEOF
	}

	size := binary.LittleEndian.Uint32(src)
	if uint64(len(src)-4) < uint64(size) {
		return ErrUnexpectedEOF
	}

	if !utf8.Valid(src[4 : 4+size]) {
		return ErrInvalidString
	}

	*dst = string(src[4 : 4+size])
	*offset += 4 + int(size)
	return nil
}

// GetOption reads a borsh option tag. Only 0 (None) and 1 (Some) are valid.
func GetOption(src []byte, isSome *bool, offset *int) error {
	if len(src) < 1 {
		return ErrUnexpectedEOF
	}

	switch src[0] {
	case 0:
		*isSome = false
	case 1:
		*isSome = true
	default:
		return ErrInvalidOption
	}
	*offset += 1
	return nil
}

// GetKey32Checked is GetKey32 with a bounds check.
func GetKey32Checked(src []byte, dst *ed25519.PublicKey, offset *int) error {
	if len(src) < ed25519.PublicKeySize {
		return ErrUnexpectedEOF
	}
	GetKey32(src, dst, offset)
	return nil
}

// GetVecLength reads a borsh vector length prefix and checks that src holds
// at least that many elements of elemSize bytes after it.
func GetVecLength(src []byte, dst *uint32, elemSize int, offset *int) error {
	if len(src) < 4 {
		return ErrUnexpectedEOF
	}

	size := binary.LittleEndian.Uint32(src)
	if uint64(len(src)-4) < uint64(size)*uint64(elemSize) {
		return ErrUnexpectedEOF
	}

	*dst = size
	*offset += 4
	return nil
}
