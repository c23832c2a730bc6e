package tokenmetadata

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metadata-vault/pkg/solana/binary"
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	// In percentages, NOT basis points
	Share uint8
}

type Collection struct {
	Verified bool
	Key      ed25519.PublicKey
}

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// Data is the user facing portion of a metadata account.
//
// A nil Creators slice is encoded as None, while a non-nil empty slice is
// encoded as Some([]).
type Data struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// DataV2 is Data extended with the collection and uses fields, as accepted by
// UpdateMetadataAccountsV2.
type DataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	Collection           *Collection
	Uses                 *Uses
}

func (d *DataV2) String() string {
	return fmt.Sprintf(
		"DataV2{name=%s,symbol=%s,uri=%s,seller_fee_basis_points=%d,creators=%d}",
		d.Name,
		d.Symbol,
		d.Uri,
		d.SellerFeeBasisPoints,
		len(d.Creators),
	)
}

// PadString right pads s with NUL bytes up to size. Strings already at or over
// size are returned as is.
func PadString(s string, size int) string {
	if len(s) >= size {
		return s
	}
	return s + strings.Repeat("\x00", size-len(s))
}

// TrimPadding removes the NUL padding applied by PadString.
func TrimPadding(s string) string {
	return strings.TrimRight(s, "\x00")
}

// The following mirror the public types with fixed size keys so they can be
// encoded with borsh. Decoding goes through the get* helpers below, as
// borsh-go reads a None option back as a pointer to a zero value.

type borshCreator struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type borshCollection struct {
	Verified bool
	Key      [32]byte
}

type borshUses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type borshData struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]borshCreator
}

type borshDataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]borshCreator
	Collection           *borshCollection
	Uses                 *borshUses
}

func toKey32(key ed25519.PublicKey) (out [32]byte) {
	copy(out[:], key)
	return out
}

func fromKey32(key [32]byte) ed25519.PublicKey {
	out := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(out, key[:])
	return out
}

func toBorshCreators(creators []Creator) *[]borshCreator {
	if creators == nil {
		return nil
	}

	out := make([]borshCreator, len(creators))
	for i, c := range creators {
		out[i] = borshCreator{
			Address:  toKey32(c.Address),
			Verified: c.Verified,
			Share:    c.Share,
		}
	}
	return &out
}

func toBorshCollection(c *Collection) *borshCollection {
	if c == nil {
		return nil
	}
	return &borshCollection{Verified: c.Verified, Key: toKey32(c.Key)}
}

func toBorshUses(u *Uses) *borshUses {
	if u == nil {
		return nil
	}
	return &borshUses{UseMethod: uint8(u.UseMethod), Remaining: u.Remaining, Total: u.Total}
}

func toBorshDataV2(d *DataV2) *borshDataV2 {
	if d == nil {
		return nil
	}
	return &borshDataV2{
		Name:                 d.Name,
		Symbol:               d.Symbol,
		Uri:                  d.Uri,
		SellerFeeBasisPoints: d.SellerFeeBasisPoints,
		Creators:             toBorshCreators(d.Creators),
		Collection:           toBorshCollection(d.Collection),
		Uses:                 toBorshUses(d.Uses),
	}
}

func keyString(key ed25519.PublicKey) string {
	if len(key) == 0 {
		return "<nil>"
	}
	return base58.Encode(key)
}

const (
	creatorSize    = ed25519.PublicKeySize + 1 + 1
	collectionSize = 1 + ed25519.PublicKeySize
	usesSize       = 1 + 8 + 8
)

func getData(src []byte, dst *Data, offset *int) error {
	var o int
	if err := binary.GetString(src[o:], &dst.Name, &o); err != nil {
		return err
	}
	if err := binary.GetString(src[o:], &dst.Symbol, &o); err != nil {
		return err
	}
	if err := binary.GetString(src[o:], &dst.Uri, &o); err != nil {
		return err
	}
	if len(src[o:]) < 2 {
		return binary.ErrUnexpectedEOF
	}
	binary.GetUint16(src[o:], &dst.SellerFeeBasisPoints, &o)
	if err := getCreators(src[o:], &dst.Creators, &o); err != nil {
		return err
	}

	*offset += o
	return nil
}

func getDataV2(src []byte, dst *DataV2, offset *int) error {
	var o int
	var data Data
	if err := getData(src, &data, &o); err != nil {
		return err
	}
	if err := getCollection(src[o:], &dst.Collection, &o); err != nil {
		return err
	}
	if err := getUses(src[o:], &dst.Uses, &o); err != nil {
		return err
	}

	dst.Name = data.Name
	dst.Symbol = data.Symbol
	dst.Uri = data.Uri
	dst.SellerFeeBasisPoints = data.SellerFeeBasisPoints
	dst.Creators = data.Creators

	*offset += o
	return nil
}

// getCreators leaves dst nil for None and sets a non-nil slice for Some.
func getCreators(src []byte, dst *[]Creator, offset *int) error {
	var o int
	var isSome bool
	if err := binary.GetOption(src, &isSome, &o); err != nil {
		return err
	}
	if !isSome {
		*dst = nil
		*offset += o
		return nil
	}

	var count uint32
	if err := binary.GetVecLength(src[o:], &count, creatorSize, &o); err != nil {
		return err
	}

	creators := make([]Creator, count)
	for i := range creators {
		binary.GetKey32(src[o:], &creators[i].Address, &o)
		if err := binary.GetBool(src[o:], &creators[i].Verified, &o); err != nil {
			return err
		}
		binary.GetUint8(src[o:], &creators[i].Share, &o)
	}

	*dst = creators
	*offset += o
	return nil
}

func getCollection(src []byte, dst **Collection, offset *int) error {
	var o int
	var isSome bool
	if err := binary.GetOption(src, &isSome, &o); err != nil {
		return err
	}
	*dst = nil
	if isSome {
		if len(src[o:]) < collectionSize {
			return binary.ErrUnexpectedEOF
		}

		var collection Collection
		if err := binary.GetBool(src[o:], &collection.Verified, &o); err != nil {
			return err
		}
		binary.GetKey32(src[o:], &collection.Key, &o)
		*dst = &collection
	}

	*offset += o
	return nil
}

func getUses(src []byte, dst **Uses, offset *int) error {
	var o int
	var isSome bool
	if err := binary.GetOption(src, &isSome, &o); err != nil {
		return err
	}
	*dst = nil
	if isSome {
		if len(src[o:]) < usesSize {
			return binary.ErrUnexpectedEOF
		}

		var method uint8
		var uses Uses
		binary.GetUint8(src[o:], &method, &o)
		binary.GetUint64(src[o:], &uses.Remaining, &o)
		binary.GetUint64(src[o:], &uses.Total, &o)
		uses.UseMethod = UseMethod(method)
		*dst = &uses
	}

	*offset += o
	return nil
}

func getOptionalUint8(src []byte, dst **uint8, offset *int) error {
	var o int
	var isSome bool
	if err := binary.GetOption(src, &isSome, &o); err != nil {
		return err
	}
	*dst = nil
	if isSome {
		if len(src[o:]) < 1 {
			return binary.ErrUnexpectedEOF
		}

		var v uint8
		binary.GetUint8(src[o:], &v, &o)
		*dst = &v
	}

	*offset += o
	return nil
}

func getOptionalBool(src []byte, dst **bool, offset *int) error {
	var o int
	var isSome bool
	if err := binary.GetOption(src, &isSome, &o); err != nil {
		return err
	}
	*dst = nil
	if isSome {
		if len(src[o:]) < 1 {
			return binary.ErrUnexpectedEOF
		}

		var v bool
		if err := binary.GetBool(src[o:], &v, &o); err != nil {
			return err
		}
		*dst = &v
	}

	*offset += o
	return nil
}
