package tokenmetadata

import (
	"crypto/ed25519"
	"fmt"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/solana/binary"
)

// MetadataAccount is the MetadataV1 account kept by the token metadata program
// for every mint.
type MetadataAccount struct {
	Key                 Key
	UpdateAuthority     ed25519.PublicKey
	Mint                ed25519.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *TokenStandard
	Collection          *Collection
	Uses                *Uses
}

type borshMetadataAccount struct {
	Key                 uint8
	UpdateAuthority     [32]byte
	Mint                [32]byte
	Data                borshData
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *uint8
	Collection          *borshCollection
	Uses                *borshUses
}

// Marshal encodes the account into a zero padded buffer of
// MetadataAccountSize bytes. Strings are written as is, callers wanting the
// on-chain padding apply PadString first.
func (obj *MetadataAccount) Marshal() ([]byte, error) {
	raw := borshMetadataAccount{
		Key:                 uint8(obj.Key),
		UpdateAuthority:     toKey32(obj.UpdateAuthority),
		Mint:                toKey32(obj.Mint),
		PrimarySaleHappened: obj.PrimarySaleHappened,
		IsMutable:           obj.IsMutable,
		EditionNonce:        obj.EditionNonce,
		Collection:          toBorshCollection(obj.Collection),
		Uses:                toBorshUses(obj.Uses),
		Data: borshData{
			Name:                 obj.Data.Name,
			Symbol:               obj.Data.Symbol,
			Uri:                  obj.Data.Uri,
			SellerFeeBasisPoints: obj.Data.SellerFeeBasisPoints,
			Creators:             toBorshCreators(obj.Data.Creators),
		},
	}
	if obj.TokenStandard != nil {
		v := uint8(*obj.TokenStandard)
		raw.TokenStandard = &v
	}

	encoded, err := borsh.Serialize(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode metadata account")
	}
	if len(encoded) > MetadataAccountSize {
		return nil, ErrAccountDataTooLarge
	}

	b := make([]byte, MetadataAccountSize)
	copy(b, encoded)
	return b, nil
}

// Unmarshal decodes a MetadataV1 account. Trailing bytes after the uses field
// are ignored and string padding is stripped.
func (obj *MetadataAccount) Unmarshal(data []byte) error {
	if len(data) == 0 || Key(data[0]) != KeyMetadataV1 {
		return ErrInvalidAccountData
	}

	var offset int
	var decoded MetadataAccount
	if err := decoded.unmarshal(data, &offset); err != nil {
		return errors.Wrap(ErrInvalidAccountData, err.Error())
	}

	decoded.Data.Name = TrimPadding(decoded.Data.Name)
	decoded.Data.Symbol = TrimPadding(decoded.Data.Symbol)
	decoded.Data.Uri = TrimPadding(decoded.Data.Uri)

	*obj = decoded
	return nil
}

func (obj *MetadataAccount) unmarshal(data []byte, offset *int) error {
	if len(data) < 1+2*ed25519.PublicKeySize {
		return binary.ErrUnexpectedEOF
	}

	obj.Key = Key(data[*offset])
	*offset += 1
	binary.GetKey32(data[*offset:], &obj.UpdateAuthority, offset)
	binary.GetKey32(data[*offset:], &obj.Mint, offset)

	if err := getData(data[*offset:], &obj.Data, offset); err != nil {
		return err
	}
	if len(data[*offset:]) < 2 {
		return binary.ErrUnexpectedEOF
	}
	if err := binary.GetBool(data[*offset:], &obj.PrimarySaleHappened, offset); err != nil {
		return err
	}
	if err := binary.GetBool(data[*offset:], &obj.IsMutable, offset); err != nil {
		return err
	}
	if err := getOptionalUint8(data[*offset:], &obj.EditionNonce, offset); err != nil {
		return err
	}

	var tokenStandard *uint8
	if err := getOptionalUint8(data[*offset:], &tokenStandard, offset); err != nil {
		return err
	}
	if tokenStandard != nil {
		v := TokenStandard(*tokenStandard)
		obj.TokenStandard = &v
	}

	if err := getCollection(data[*offset:], &obj.Collection, offset); err != nil {
		return err
	}
	return getUses(data[*offset:], &obj.Uses, offset)
}

// ToDataV2 returns the account's data together with its collection and uses,
// the shape expected by UpdateMetadataAccountsV2.
func (obj *MetadataAccount) ToDataV2() DataV2 {
	var creators []Creator
	if obj.Data.Creators != nil {
		creators = make([]Creator, len(obj.Data.Creators))
		copy(creators, obj.Data.Creators)
	}

	var collection *Collection
	if obj.Collection != nil {
		c := *obj.Collection
		collection = &c
	}

	var uses *Uses
	if obj.Uses != nil {
		u := *obj.Uses
		uses = &u
	}

	return DataV2{
		Name:                 obj.Data.Name,
		Symbol:               obj.Data.Symbol,
		Uri:                  obj.Data.Uri,
		SellerFeeBasisPoints: obj.Data.SellerFeeBasisPoints,
		Creators:             creators,
		Collection:           collection,
		Uses:                 uses,
	}
}

func (obj *MetadataAccount) String() string {
	return fmt.Sprintf(
		"MetadataAccount{update_authority=%s,mint=%s,name=%s,symbol=%s,uri=%s,is_mutable=%v}",
		keyString(obj.UpdateAuthority),
		keyString(obj.Mint),
		obj.Data.Name,
		obj.Data.Symbol,
		obj.Data.Uri,
		obj.IsMutable,
	)
}
