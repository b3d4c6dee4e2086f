package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ruteri/royalty-registry/interfaces"
)

// RoyaltyProvider defines the operations the royalty HTTP API exposes.
// It is implemented by clients.RoyaltyClient.
type RoyaltyProvider interface {
	// Set submits a signed royalty config update for asset.
	Set(asset interfaces.Address, config interfaces.RoyaltyConfig) error

	// Get returns the receiver and royalty for a sale of tokenID at salePrice.
	Get(asset interfaces.Address, tokenID, salePrice string) (*GetRoyaltyResponse, error)

	// Config returns the stored config of asset.
	Config(asset interfaces.Address) (*RoyaltyConfigResponse, error)
}

// SetRoyaltyRequest is the body of PUT /api/royalty/{asset_address}.
type SetRoyaltyRequest struct {
	// Receiver is the 0x-prefixed royalty receiver address
	Receiver string `json:"receiver" validate:"required,eth_addr"`

	// FeeRate is the numerator over interfaces.FeeDenominator
	FeeRate *uint64 `json:"fee_rate" validate:"required"`

	// Permanent locks the config forever
	Permanent bool `json:"permanent"`

	// Deadline is the unix time after which the signed request is rejected
	Deadline int64 `json:"deadline" validate:"required,gt=0"`

	// Revision is the config revision the request was made against, as
	// reported by GET .../config. A signed request applies at most once.
	Revision *uint64 `json:"revision" validate:"required"`
}

// Validate checks the request fields.
func (r *SetRoyaltyRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid field %s: failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// RoyaltyConfig converts the validated request.
func (r *SetRoyaltyRequest) RoyaltyConfig() (interfaces.RoyaltyConfig, error) {
	receiver, err := interfaces.ParseAddress(r.Receiver)
	if err != nil {
		return interfaces.RoyaltyConfig{}, err
	}
	var feeRate uint64
	if r.FeeRate != nil {
		feeRate = *r.FeeRate
	}
	return interfaces.RoyaltyConfig{
		Receiver:  receiver,
		FeeRate:   feeRate,
		Permanent: r.Permanent,
	}, nil
}

// GetRoyaltyResponse answers GET /api/royalty/{asset_address}.
type GetRoyaltyResponse struct {
	Receiver string `json:"receiver"`

	// RoyaltyAmount is a base-10 integer, possibly beyond 64 bits
	RoyaltyAmount string `json:"royalty_amount"`
}

// RoyaltyConfigResponse answers GET /api/royalty/{asset_address}/config.
type RoyaltyConfigResponse struct {
	Receiver   string `json:"receiver"`
	FeeRate    uint64 `json:"fee_rate"`
	Permanent  bool   `json:"permanent"`
	Configured bool   `json:"configured"`
	Revision   uint64 `json:"revision"`
}

// ErrorResponse is returned with every non-2xx status of the royalty API.
// Code carries interfaces.ErrorCode when the failure is a registry error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())
