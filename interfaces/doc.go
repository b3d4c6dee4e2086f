// Package interfaces defines the core interfaces and types for the royalty
// registry, separating interface definitions from implementations.
//
// # Registry Interfaces
//
// RoyaltyRegistry: Set/Get/Config over per-asset royalty policies.
//
// AssetAuthority: Resolves the administrator of an asset. The registry asks it
// on every write and never on reads.
//
// # Storage Interfaces
//
// RoyaltyStore: Persists one RoyaltyConfig per asset and provides an atomic
// per-key Update used to enforce the permanent lock.
//
// RoyaltyStoreFactory: Creates stores from URI strings.
//
// # Types
//
//   - Address: 20-byte Ethereum address used for assets, callers and receivers
//   - RoyaltyConfig: receiver, fee rate over FeeDenominator, permanent flag
//   - RoyaltyInfo: receiver and computed amount for one sale
//
// # Error Types
//
//   - ErrUnauthorized (wire code "1"): caller is not the administrator
//   - ErrAlreadyLocked (wire code "3"): config is permanent
//   - ErrInvalidFeeRate (wire code "4"): fee rate above FeeDenominator
//   - ErrAdministratorNotFound: the authority cannot resolve the asset
//   - ErrStoreUnavailable, ErrInvalidStoreURI, ErrInvalidAddress
package interfaces
