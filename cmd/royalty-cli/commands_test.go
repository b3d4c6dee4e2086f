package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/royalty-registry/api"
	"github.com/ruteri/royalty-registry/api/clients"
	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	asset    = common.HexToAddress("0x4dfc2bEbc82201515e6b5C21e0FA7A7eEC06aAe5")
	receiver = common.HexToAddress("0x502b2FE7Cc3488fcfF2E16158615AF87b4Ab5C41")
)

func TestRunSet(t *testing.T) {
	config := interfaces.RoyaltyConfig{Receiver: receiver, FeeRate: 50_000, Permanent: true}

	p := new(clients.MockRoyaltyProvider)
	p.On("Set", asset, config).Return(nil)
	p.On("Config", asset).Return(&api.RoyaltyConfigResponse{
		Receiver: receiver.Hex(), FeeRate: 50_000, Permanent: true, Configured: true,
	}, nil)

	var out bytes.Buffer
	require.NoError(t, runSet(p, asset, config, &out))

	var printed api.RoyaltyConfigResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.True(t, printed.Permanent)
	assert.Equal(t, uint64(50_000), printed.FeeRate)
	p.AssertExpectations(t)
}

func TestRunSet_Locked(t *testing.T) {
	p := new(clients.MockRoyaltyProvider)
	p.On("Set", asset, interfaces.RoyaltyConfig{Receiver: receiver}).
		Return(&clients.APIError{StatusCode: 409, Code: interfaces.CodeAlreadyLocked, Message: "locked"})

	var out bytes.Buffer
	err := runSet(p, asset, interfaces.RoyaltyConfig{Receiver: receiver}, &out)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyLocked)
	assert.Empty(t, out.String())
	p.AssertNotCalled(t, "Config", asset)
}

func TestRunGet(t *testing.T) {
	p := new(clients.MockRoyaltyProvider)
	p.On("Get", asset, "7", "10000").Return(&api.GetRoyaltyResponse{Receiver: receiver.Hex(), RoyaltyAmount: "500"}, nil)

	var out bytes.Buffer
	require.NoError(t, runGet(p, asset, "7", "10000", &out))
	assert.Contains(t, out.String(), `"royalty_amount": "500"`)
	p.AssertExpectations(t)
}

func TestRunSign(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	var out bytes.Buffer
	deadline := time.Unix(1_900_000_000, 0)
	require.NoError(t, runSign(key, asset, interfaces.RoyaltyConfig{Receiver: receiver, FeeRate: 1}, 4, deadline, &out))

	var printed signedRequest
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, api.SignatureHeader, printed.Header)

	var body api.SetRoyaltyRequest
	require.NoError(t, json.Unmarshal([]byte(printed.Body), &body))
	assert.Equal(t, deadline.Unix(), body.Deadline)
	require.NotNil(t, body.Revision)
	assert.Equal(t, uint64(4), *body.Revision)

	signer, err := api.RecoverCaller(printed.Path, []byte(printed.Body), printed.Signature)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer)
	assert.Equal(t, signer.Hex(), printed.Signer)
}
