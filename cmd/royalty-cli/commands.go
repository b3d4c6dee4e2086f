package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/royalty-registry/api"
	"github.com/ruteri/royalty-registry/interfaces"
)

func runSet(p api.RoyaltyProvider, asset interfaces.Address, config interfaces.RoyaltyConfig, out io.Writer) error {
	if err := p.Set(asset, config); err != nil {
		return fmt.Errorf("set royalty of %s: %w", asset.Hex(), err)
	}
	return runConfig(p, asset, out)
}

func runGet(p api.RoyaltyProvider, asset interfaces.Address, tokenID, salePrice string, out io.Writer) error {
	resp, err := p.Get(asset, tokenID, salePrice)
	if err != nil {
		return fmt.Errorf("get royalty of %s: %w", asset.Hex(), err)
	}
	return printJSON(out, resp)
}

func runConfig(p api.RoyaltyProvider, asset interfaces.Address, out io.Writer) error {
	resp, err := p.Config(asset)
	if err != nil {
		return fmt.Errorf("get config of %s: %w", asset.Hex(), err)
	}
	return printJSON(out, resp)
}

// signedRequest is printed by the sign command. Body must be sent verbatim.
type signedRequest struct {
	Signer    string `json:"signer"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Header    string `json:"header"`
	Signature string `json:"signature"`
	Body      string `json:"body"`
}

func runSign(key *ecdsa.PrivateKey, asset interfaces.Address, config interfaces.RoyaltyConfig, revision uint64, deadline time.Time, out io.Writer) error {
	feeRate := config.FeeRate
	body, err := json.Marshal(api.SetRoyaltyRequest{
		Receiver:  config.Receiver.Hex(),
		FeeRate:   &feeRate,
		Permanent: config.Permanent,
		Deadline:  deadline.Unix(),
		Revision:  &revision,
	})
	if err != nil {
		return err
	}

	path := "/api/royalty/" + asset.Hex()
	signature, err := api.SignRequest(key, path, body)
	if err != nil {
		return err
	}

	return printJSON(out, signedRequest{
		Signer:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Method:    "PUT",
		Path:      path,
		Header:    api.SignatureHeader,
		Signature: signature,
		Body:      string(body),
	})
}

func printJSON(out io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}
