package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metadata-vault/pkg/runtime/accounts"
)

func RunTests(t *testing.T, s accounts.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s accounts.Store){
		testRoundTrip,
		testStaleUpdate,
		testBatchIsAtomic,
		testGetAllByOwner,
		testValidation,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s accounts.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		start := time.Now()

		_, err := s.Get(ctx, "vault")
		assert.Equal(t, accounts.ErrAccountNotFound, err)

		expected := &accounts.Record{
			Address:  "vault",
			Owner:    "program",
			Lamports: 92_769_600,
			Data:     []byte{211, 8, 232, 43, 2, 152, 117, 119, 255},
			Slot:     1,
		}
		cloned := expected.Clone()

		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.True(t, expected.LastUpdatedAt.After(start))

		actual, err := s.Get(ctx, "vault")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.Equal(t, expected.Id, actual.Id)

		// Returned records are copies.
		actual.Data[0] = 0
		actual, err = s.Get(ctx, "vault")
		require.NoError(t, err)
		assert.EqualValues(t, 211, actual.Data[0])

		id := expected.Id
		expected.Lamports = 0
		expected.Owner = "system"
		expected.Data = nil
		expected.Slot = 2
		cloned = expected.Clone()
		require.NoError(t, s.Save(ctx, expected))
		assert.Equal(t, id, expected.Id)

		actual, err = s.Get(ctx, "vault")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		// Same slot writes are allowed, since a slot can hold many transactions.
		expected.Lamports = 10
		require.NoError(t, s.Save(ctx, expected))
	})
}

func testStaleUpdate(t *testing.T, s accounts.Store) {
	t.Run("testStaleUpdate", func(t *testing.T) {
		ctx := context.Background()

		record := &accounts.Record{
			Address:  "account",
			Owner:    "owner",
			Lamports: 100,
			Slot:     10,
		}
		require.NoError(t, s.Save(ctx, record))

		stale := &accounts.Record{
			Address:  "account",
			Owner:    "owner",
			Lamports: 1,
			Slot:     9,
		}
		assert.Equal(t, accounts.ErrStaleAccountState, s.Save(ctx, stale))

		actual, err := s.Get(ctx, "account")
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Lamports)
		assert.EqualValues(t, 10, actual.Slot)
	})
}

func testBatchIsAtomic(t *testing.T, s accounts.Store) {
	t.Run("testBatchIsAtomic", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, &accounts.Record{
			Address:  "b",
			Owner:    "owner",
			Lamports: 5,
			Slot:     20,
		}))

		batch := []*accounts.Record{
			{Address: "a", Owner: "owner", Lamports: 1, Slot: 15},
			{Address: "b", Owner: "owner", Lamports: 2, Slot: 15},
		}
		assert.Equal(t, accounts.ErrStaleAccountState, s.Save(ctx, batch...))

		_, err := s.Get(ctx, "a")
		assert.Equal(t, accounts.ErrAccountNotFound, err)

		actual, err := s.Get(ctx, "b")
		require.NoError(t, err)
		assert.EqualValues(t, 5, actual.Lamports)

		batch[1].Slot = 20
		require.NoError(t, s.Save(ctx, batch...))
		for _, record := range batch {
			actual, err := s.Get(ctx, record.Address)
			require.NoError(t, err)
			assert.Equal(t, record.Lamports, actual.Lamports)
		}
	})
}

func testGetAllByOwner(t *testing.T, s accounts.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByOwner(ctx, "program")
		assert.Equal(t, accounts.ErrAccountNotFound, err)

		var expected []*accounts.Record
		for i := 4; i >= 0; i-- {
			record := &accounts.Record{
				Address:  fmt.Sprintf("vault%d", i),
				Owner:    "program",
				Lamports: uint64(i),
				Data:     []byte{byte(i)},
				Slot:     1,
			}
			require.NoError(t, s.Save(ctx, record))
			expected = append([]*accounts.Record{record}, expected...)
		}
		require.NoError(t, s.Save(ctx, &accounts.Record{
			Address: "other",
			Owner:   "system",
			Slot:    1,
		}))

		actual, err := s.GetAllByOwner(ctx, "program")
		require.NoError(t, err)
		require.Len(t, actual, len(expected))
		for i := range expected {
			assertEquivalentRecords(t, expected[i], actual[i])
		}

		// Ownership changes move accounts between owners.
		expected[0].Owner = "system"
		expected[0].Slot = 2
		require.NoError(t, s.Save(ctx, expected[0]))

		actual, err = s.GetAllByOwner(ctx, "program")
		require.NoError(t, err)
		assert.Len(t, actual, len(expected)-1)

		actual, err = s.GetAllByOwner(ctx, "system")
		require.NoError(t, err)
		assert.Len(t, actual, 2)
	})
}

func testValidation(t *testing.T, s accounts.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		for _, invalid := range []*accounts.Record{
			{Owner: "owner"},
			{Address: "address"},
		} {
			assert.Error(t, s.Save(ctx, invalid))
		}

		// One invalid record rejects the whole batch.
		assert.Error(t, s.Save(ctx, &accounts.Record{Address: "valid", Owner: "owner"}, &accounts.Record{Address: "invalid"}))
		_, err := s.Get(ctx, "valid")
		assert.Equal(t, accounts.ErrAccountNotFound, err)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *accounts.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, obj1.Executable, obj2.Executable)
	assert.Equal(t, obj1.Slot, obj2.Slot)
	assert.Equal(t, len(obj1.Data), len(obj2.Data))
	if len(obj1.Data) > 0 {
		assert.Equal(t, obj1.Data, obj2.Data)
	}
}
