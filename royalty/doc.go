// Package royalty implements the royalty registry: per-asset royalty policies
// that only the asset's administrator may configure and that can be frozen
// forever.
//
// # Operations
//
// Set resolves the asset's administrator through an interfaces.AssetAuthority
// and compares it with the caller. Only then does it enter the store's atomic
// per-key update, where a permanent config rejects the write with
// interfaces.ErrAlreadyLocked. Unauthorized always takes precedence over
// AlreadyLocked. A successful Set fully replaces receiver, fee rate and the
// permanent flag.
//
// Get is a pure read that never consults the authority. It returns the null
// address and zero for unconfigured assets, otherwise the receiver and
// salePrice * feeRate / 1_000_000 computed in math/big and truncated toward
// zero.
//
// # Lifecycle
//
//	Absent -> Configured -> Configured ... -> Locked
//
// Locked is terminal. Every Set on a locked asset fails, including one from
// the administrator that locked it.
//
// # Fee Rate Bound
//
// By default a fee rate above 1_000_000 (100%) is rejected with
// interfaces.ErrInvalidFeeRate. WithUncappedFeeRate accepts any rate, letting
// the royalty exceed the sale price.
//
// # Usage Example
//
//	store := storage.NewMemoryStore()
//	authority := authority.NewStaticAuthority(map[interfaces.Address]interfaces.Address{asset: admin})
//	registry := royalty.NewRegistry(store, authority, logger)
//
//	err := registry.Set(ctx, asset, admin, interfaces.RoyaltyConfig{Receiver: payee, FeeRate: 50_000})
//	info, err := registry.Get(ctx, asset, big.NewInt(1), salePrice)
package royalty
