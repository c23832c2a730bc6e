package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     int               `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcServer struct {
	sync.Mutex
	t        *testing.T
	requests []rpcRequest
	handlers map[string]func(params []json.RawMessage) (interface{}, *rpcError)
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newRPCServer(t *testing.T) (*rpcServer, *httptest.Server) {
	s := &rpcServer{
		t:        t,
		handlers: make(map[string]func(params []json.RawMessage) (interface{}, *rpcError)),
	}
	return s, httptest.NewServer(s)
}

func (s *rpcServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))

	s.Lock()
	s.requests = append(s.requests, req)
	handler, ok := s.handlers[req.Method]
	s.Unlock()

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
	}
	if !ok {
		resp["error"] = rpcError{Code: -32601, Message: "method not found"}
	} else {
		result, rpcErr := handler(req.Params)
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(s.t, json.NewEncoder(w).Encode(resp))
}

func TestClient_GetAccountInfo(t *testing.T) {
	s, server := newRPCServer(t)
	defer server.Close()

	account, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	owner, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	data := []byte{1, 2, 3, 4}
	s.handlers["getAccountInfo"] = func(params []json.RawMessage) (interface{}, *rpcError) {
		var address string
		require.NoError(t, json.Unmarshal(params[0], &address))
		if address != base58.Encode(account) {
			return map[string]interface{}{"value": nil}, nil
		}

		var config map[string]string
		require.NoError(t, json.Unmarshal(params[1], &config))
		assert.Equal(t, "base64", config["encoding"])
		assert.Equal(t, "confirmed", config["commitment"])

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 10},
			"value": map[string]interface{}{
				"lamports":   5000,
				"owner":      base58.Encode(owner),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
			},
		}, nil
	}

	c := New(server.URL)

	info, err := c.GetAccountInfo(account, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, owner, info.Owner)
	assert.Equal(t, data, info.Data)
	assert.EqualValues(t, 5000, info.Lamports)
	assert.False(t, info.Executable)

	_, err = c.GetAccountInfo(owner, CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestClient_GetMinimumBalanceForRentExemption(t *testing.T) {
	s, server := newRPCServer(t)
	defer server.Close()

	var attempts int
	s.handlers["getMinimumBalanceForRentExemption"] = func(params []json.RawMessage) (interface{}, *rpcError) {
		attempts++
		if attempts == 1 {
			return nil, &rpcError{Code: rpcNodeUnhealthyCode, Message: "node is behind"}
		}

		var size uint64
		require.NoError(t, json.Unmarshal(params[0], &size))
		return (128 + size) * 3480 * 2, nil
	}

	c := New(server.URL)

	lamports, err := c.GetMinimumBalanceForRentExemption(165)
	require.NoError(t, err)
	assert.EqualValues(t, 2039280, lamports)
	assert.Equal(t, 2, attempts)
}

func TestClient_GetFilteredProgramAccounts(t *testing.T) {
	s, server := newRPCServer(t)
	defer server.Close()

	program, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	filter := []byte{211, 8, 232, 43, 2, 105, 201, 230}
	s.handlers["getProgramAccounts"] = func(params []json.RawMessage) (interface{}, *rpcError) {
		var config struct {
			Filters []struct {
				Memcmp struct {
					Offset uint   `json:"offset"`
					Bytes  string `json:"bytes"`
				} `json:"memcmp"`
			} `json:"filters"`
		}
		require.NoError(t, json.Unmarshal(params[1], &config))
		require.Len(t, config.Filters, 1)
		assert.EqualValues(t, 0, config.Filters[0].Memcmp.Offset)
		assert.Equal(t, base58.Encode(filter), config.Filters[0].Memcmp.Bytes)

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1234},
			"value": []map[string]interface{}{
				{"pubkey": "A2StQ8kXhQfa4EsEZxh6zwNftQ1wXxPj17JNJzpCeUMQ"},
				{"pubkey": "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"},
			},
		}, nil
	}

	c := New(server.URL)

	addresses, slot, err := c.GetFilteredProgramAccounts(program, 0, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, slot)
	assert.Equal(t, []string{
		"A2StQ8kXhQfa4EsEZxh6zwNftQ1wXxPj17JNJzpCeUMQ",
		"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s",
	}, addresses)
}
