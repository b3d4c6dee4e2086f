package httpserver

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/royalty-registry/api"
	"github.com/ruteri/royalty-registry/authority"
	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/ruteri/royalty-registry/royalty"
	"github.com/ruteri/royalty-registry/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAsset    = common.HexToAddress("0x4dfc2bEbc82201515e6b5C21e0FA7A7eEC06aAe5")
	testReceiver = common.HexToAddress("0x502b2FE7Cc3488fcfF2E16158615AF87b4Ab5C41")
	otherPayee   = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

type testEnv struct {
	server    *httptest.Server
	handler   *Handler
	adminKey  *ecdsa.PrivateKey
	otherKey  *ecdsa.PrivateKey
	authority *authority.StaticAuthority
}

func newTestEnv(t *testing.T, store interfaces.RoyaltyStore) *testEnv {
	t.Helper()

	adminKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := authority.NewStaticAuthority(map[interfaces.Address]interfaces.Address{
		testAsset: crypto.PubkeyToAddress(adminKey.PublicKey),
	})
	if store == nil {
		store = storage.NewMemoryStore()
	}
	registry := royalty.NewRegistry(store, auth, logger)
	handler := NewHandler(registry, store, logger)

	srv, err := New(&api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      logger,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		server:    ts,
		handler:   handler,
		adminKey:  adminKey,
		otherKey:  otherKey,
		authority: auth,
	}
}

// setBody builds a request against an unconfigured asset.
func setBody(receiver common.Address, feeRate uint64, permanent bool) api.SetRoyaltyRequest {
	return setBodyAt(receiver, feeRate, permanent, 0)
}

func setBodyAt(receiver common.Address, feeRate uint64, permanent bool, revision uint64) api.SetRoyaltyRequest {
	return api.SetRoyaltyRequest{
		Receiver:  receiver.Hex(),
		FeeRate:   &feeRate,
		Permanent: permanent,
		Deadline:  time.Now().Add(time.Minute).Unix(),
		Revision:  &revision,
	}
}

// nextBody builds a request against the current revision of testAsset.
func (e *testEnv) nextBody(t *testing.T, receiver common.Address, feeRate uint64, permanent bool) api.SetRoyaltyRequest {
	t.Helper()
	var cfg api.RoyaltyConfigResponse
	require.Equal(t, http.StatusOK, e.get(t, "/api/royalty/"+testAsset.Hex()+"/config", &cfg))
	return setBodyAt(receiver, feeRate, permanent, cfg.Revision)
}

func (e *testEnv) put(t *testing.T, key *ecdsa.PrivateKey, asset string, body any) (*http.Response, api.ErrorResponse) {
	t.Helper()

	path := "/api/royalty/" + asset
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var sig string
	if key != nil {
		sig, err = api.SignRequest(key, path, raw)
		require.NoError(t, err)
	}
	return e.send(t, path, raw, sig)
}

// send issues a PUT with a pre-built body and signature header.
func (e *testEnv) send(t *testing.T, path string, raw []byte, sig string) (*http.Response, api.ErrorResponse) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, e.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	if sig != "" {
		req.Header.Set(api.SignatureHeader, sig)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var errResp api.ErrorResponse
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	}
	return resp, errResp
}

func (e *testEnv) get(t *testing.T, path string, out any) int {
	t.Helper()

	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) royalty(t *testing.T, salePrice string) api.GetRoyaltyResponse {
	t.Helper()
	var out api.GetRoyaltyResponse
	status := e.get(t, fmt.Sprintf("/api/royalty/%s?token_id=1&sale_price=%s", testAsset.Hex(), salePrice), &out)
	require.Equal(t, http.StatusOK, status)
	return out
}

func TestHandler_Scenario(t *testing.T) {
	env := newTestEnv(t, nil)
	asset := testAsset.Hex()

	// Unconfigured
	got := env.royalty(t, "10000")
	assert.Equal(t, interfaces.NullAddress.Hex(), got.Receiver)
	assert.Equal(t, "0", got.RoyaltyAmount)

	resp, _ := env.put(t, env.adminKey, asset, env.nextBody(t, testReceiver, 500_000, false))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got = env.royalty(t, "10000")
	assert.Equal(t, testReceiver.Hex(), got.Receiver)
	assert.Equal(t, "5000", got.RoyaltyAmount)

	// Stranger
	resp, errResp := env.put(t, env.otherKey, asset, env.nextBody(t, otherPayee, 1_000_000, false))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, interfaces.CodeUnauthorized, errResp.Code)

	// Lock
	resp, _ = env.put(t, env.adminKey, asset, env.nextBody(t, testReceiver, 300_000, true))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, errResp = env.put(t, env.adminKey, asset, env.nextBody(t, otherPayee, 100_000, false))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, interfaces.CodeAlreadyLocked, errResp.Code)

	// Stranger against a locked config still sees unauthorized
	resp, errResp = env.put(t, env.otherKey, asset, env.nextBody(t, otherPayee, 100_000, false))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, interfaces.CodeUnauthorized, errResp.Code)

	got = env.royalty(t, "10000")
	assert.Equal(t, testReceiver.Hex(), got.Receiver)
	assert.Equal(t, "3000", got.RoyaltyAmount)

	var cfg api.RoyaltyConfigResponse
	require.Equal(t, http.StatusOK, env.get(t, "/api/royalty/"+asset+"/config", &cfg))
	assert.Equal(t, api.RoyaltyConfigResponse{
		Receiver:   testReceiver.Hex(),
		FeeRate:    300_000,
		Permanent:  true,
		Configured: true,
		Revision:   2,
	}, cfg)
}

func TestHandler_SetRejections(t *testing.T) {
	asset := testAsset.Hex()

	tests := []struct {
		name       string
		key        func(e *testEnv) *ecdsa.PrivateKey
		asset      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "fee rate above denominator",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset:      asset,
			body:       setBody(testReceiver, interfaces.FeeDenominator+1, false),
			wantStatus: http.StatusBadRequest,
			wantCode:   interfaces.CodeInvalidFeeRate,
		},
		{
			name:       "unsigned",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return nil },
			asset:      asset,
			body:       setBody(testReceiver, 1, false),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "expired deadline",
			key:   func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset: asset,
			body: func() api.SetRoyaltyRequest {
				b := setBody(testReceiver, 1, false)
				b.Deadline = time.Now().Add(-time.Minute).Unix()
				return b
			}(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed asset",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset:      "0x1234",
			body:       setBody(testReceiver, 1, false),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing fee rate",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset:      asset,
			body:       map[string]any{"receiver": testReceiver.Hex(), "deadline": time.Now().Add(time.Minute).Unix(), "revision": 0},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "unknown field",
			key:   func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset: asset,
			body: map[string]any{
				"receiver": testReceiver.Hex(), "fee_rate": 1, "deadline": time.Now().Add(time.Minute).Unix(), "revision": 0, "lock": true,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing revision",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset:      asset,
			body:       map[string]any{"receiver": testReceiver.Hex(), "fee_rate": 1, "deadline": time.Now().Add(time.Minute).Unix()},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "revision ahead of store",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset:      asset,
			body:       setBodyAt(testReceiver, 1, false, 3),
			wantStatus: http.StatusPreconditionFailed,
			wantCode:   interfaces.CodeStaleRevision,
		},
		{
			name:       "asset without administrator",
			key:        func(e *testEnv) *ecdsa.PrivateKey { return e.adminKey },
			asset:      otherPayee.Hex(),
			body:       setBody(testReceiver, 1, false),
			wantStatus: http.StatusForbidden,
			wantCode:   interfaces.CodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			resp, errResp := env.put(t, tt.key(env), tt.asset, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, errResp.Code)
			assert.NotEmpty(t, errResp.Error)

			var cfg api.RoyaltyConfigResponse
			require.Equal(t, http.StatusOK, env.get(t, "/api/royalty/"+asset+"/config", &cfg))
			assert.False(t, cfg.Configured)
		})
	}
}

func TestHandler_SignatureBindsPath(t *testing.T) {
	env := newTestEnv(t, nil)

	raw, err := json.Marshal(setBody(testReceiver, 1, false))
	require.NoError(t, err)

	// Signed for another asset, replayed against testAsset
	sig, err := api.SignRequest(env.adminKey, "/api/royalty/"+otherPayee.Hex(), raw)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, env.server.URL+"/api/royalty/"+testAsset.Hex(), bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set(api.SignatureHeader, sig)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_SignedRequestAppliesOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	path := "/api/royalty/" + testAsset.Hex()

	first, err := json.Marshal(setBodyAt(testReceiver, 500_000, false, 0))
	require.NoError(t, err)
	firstSig, err := api.SignRequest(env.adminKey, path, first)
	require.NoError(t, err)

	resp, _ := env.send(t, path, first, firstSig)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.put(t, env.adminKey, testAsset.Hex(), env.nextBody(t, otherPayee, 100_000, false))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The earlier request, resent byte for byte, must not roll the config back
	resp, errResp := env.send(t, path, first, firstSig)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, interfaces.CodeStaleRevision, errResp.Code)

	got := env.royalty(t, "10000")
	assert.Equal(t, otherPayee.Hex(), got.Receiver)
	assert.Equal(t, "1000", got.RoyaltyAmount)

	// Resending the latest request is rejected as well
	latest, err := json.Marshal(setBodyAt(otherPayee, 100_000, false, 1))
	require.NoError(t, err)
	latestSig, err := api.SignRequest(env.adminKey, path, latest)
	require.NoError(t, err)
	resp, _ = env.send(t, path, latest, latestSig)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestHandler_DeadlineWindow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.handler.SetMaxDeadlineWindow(time.Hour)

	body := setBody(testReceiver, 1, false)
	body.Deadline = time.Now().Add(48 * time.Hour).Unix()

	resp, _ := env.put(t, env.adminKey, testAsset.Hex(), body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.put(t, env.adminKey, testAsset.Hex(), setBody(testReceiver, 1, false))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_GetQuery(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.put(t, env.adminKey, testAsset.Hex(), setBody(testReceiver, 250_000, false))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantAmount string
	}{
		{name: "ok", query: "?sale_price=10000", wantStatus: http.StatusOK, wantAmount: "2500"},
		{name: "token id ignored", query: "?token_id=99&sale_price=10000", wantStatus: http.StatusOK, wantAmount: "2500"},
		{name: "truncates", query: "?sale_price=3", wantStatus: http.StatusOK, wantAmount: "0"},
		{
			name:       "beyond 64 bits",
			query:      "?sale_price=123456789012345678901234567890123456789",
			wantStatus: http.StatusOK,
			wantAmount: "30864197253086419725308641972530864197",
		},
		{name: "missing price", query: "", wantStatus: http.StatusBadRequest},
		{name: "negative price", query: "?sale_price=-5", wantStatus: http.StatusBadRequest},
		{name: "non-numeric price", query: "?sale_price=1e18", wantStatus: http.StatusBadRequest},
		{name: "bad token id", query: "?sale_price=1&token_id=x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(env.server.URL + "/api/royalty/" + testAsset.Hex() + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var out api.GetRoyaltyResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, testReceiver.Hex(), out.Receiver)
			assert.Equal(t, tt.wantAmount, out.RoyaltyAmount)
		})
	}
}

func TestHandler_AssetWithoutPrefix(t *testing.T) {
	env := newTestEnv(t, nil)

	var cfg api.RoyaltyConfigResponse
	status := env.get(t, "/api/royalty/4dfc2bebc82201515e6b5c21e0fa7a7eec06aae5/config", &cfg)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, cfg.Configured)
	assert.Equal(t, interfaces.NullAddress.Hex(), cfg.Receiver)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrapped: %w", interfaces.ErrUnauthorized), want: http.StatusForbidden},
		{err: interfaces.ErrAlreadyLocked, want: http.StatusConflict},
		{err: interfaces.ErrInvalidFeeRate, want: http.StatusBadRequest},
		{err: interfaces.ErrStoreUnavailable, want: http.StatusServiceUnavailable},
		{err: interfaces.ErrStaleRevision, want: http.StatusPreconditionFailed},
		{err: fmt.Errorf("redis: %w", interfaces.ErrWriteConflict), want: http.StatusConflict},
		{err: badRequest("nope"), want: http.StatusBadRequest},
		{err: io.ErrUnexpectedEOF, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
