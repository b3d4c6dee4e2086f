package interfaces

import (
	"context"
	"math/big"
)

// AssetAuthority resolves who may configure an asset's royalty policy.
type AssetAuthority interface {
	// ResolveAdministrator returns the identity currently authorized to
	// administer the asset, or ErrAdministratorNotFound.
	ResolveAdministrator(ctx context.Context, asset Address) (Address, error)
}

// RoyaltyRegistry is the library-level API of the registry.
type RoyaltyRegistry interface {
	// Set replaces the royalty config of asset on behalf of caller.
	Set(ctx context.Context, asset Address, caller Address, config RoyaltyConfig) error

	// SetAtRevision is Set conditioned on the stored config still being at
	// revision (0 for an unconfigured asset). Otherwise it fails with
	// ErrStaleRevision, after the authorization and lock checks.
	SetAtRevision(ctx context.Context, asset Address, caller Address, config RoyaltyConfig, revision uint64) error

	// Get computes the royalty owed for a sale. tokenID is accepted for
	// compatibility with per-unit schemes and does not affect the result.
	Get(ctx context.Context, asset Address, tokenID *big.Int, salePrice *big.Int) (RoyaltyInfo, error)

	// Config returns the stored config of asset and whether one exists.
	Config(ctx context.Context, asset Address) (RoyaltyConfig, bool, error)
}
