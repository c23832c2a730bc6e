package updatemetadata

import (
	"crypto/ed25519"
	"crypto/sha256"
)

const discriminatorSize = 8

// anchorDiscriminator is the first 8 bytes of sha256("<namespace>:<name>").
func anchorDiscriminator(namespace, name string) []byte {
	h := sha256.Sum256([]byte(namespace + ":" + name))
	return h[:discriminatorSize]
}

func putDiscriminator(dst []byte, src []byte, offset *int) {
	copy(dst[*offset:], src)
	*offset += discriminatorSize
}
func getDiscriminator(src []byte, dst *[]byte, offset *int) {
	*dst = make([]byte, discriminatorSize)
	copy(*dst, src[*offset:])
	*offset += discriminatorSize
}

func putKey(dst []byte, src []byte, offset *int) {
	copy(dst[*offset:], src)
	*offset += ed25519.PublicKeySize
}
func getKey(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
}
