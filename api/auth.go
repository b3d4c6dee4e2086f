package api

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/royalty-registry/interfaces"
)

// SignatureHeader carries the caller's signature over the request.
// The value is a 0x-prefixed 65-byte [R || S || V] secp256k1 signature of
// the EIP-191 personal message path||body.
const SignatureHeader = "X-Royalty-Signature"

var ErrInvalidSignature = errors.New("invalid request signature")

// SigningHash returns the digest a caller signs for a request.
func SigningHash(path string, body []byte) []byte {
	message := make([]byte, 0, len(path)+len(body))
	message = append(message, path...)
	message = append(message, body...)
	return accounts.TextHash(message)
}

// SignRequest signs path||body with key and returns the header value.
func SignRequest(key *ecdsa.PrivateKey, path string, body []byte) (string, error) {
	sig, err := crypto.Sign(SigningHash(path, body), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverCaller returns the address that produced signature over path||body.
// Both 0/1 and 27/28 recovery ids are accepted.
func RecoverCaller(path string, body []byte, signature string) (interfaces.Address, error) {
	if signature == "" {
		return interfaces.NullAddress, fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return interfaces.NullAddress, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return interfaces.NullAddress, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(SigningHash(path, body), sig)
	if err != nil {
		return interfaces.NullAddress, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
