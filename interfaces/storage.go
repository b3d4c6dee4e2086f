package interfaces

import "context"

// UpdateFunc computes the next config of an asset from its committed current
// value. Returning an error aborts the update and leaves the store unchanged.
type UpdateFunc func(current RoyaltyConfig, exists bool) (RoyaltyConfig, error)

// RoyaltyStore persists one RoyaltyConfig per asset.
type RoyaltyStore interface {
	// Load returns the config of an asset and whether one exists.
	// Absence is not an error.
	Load(ctx context.Context, asset Address) (RoyaltyConfig, bool, error)

	// Update atomically applies fn to the asset's config. fn observes the
	// committed value and its result is committed only if no other writer
	// changed the asset in between. Updates to different assets are independent.
	Update(ctx context.Context, asset Address, fn UpdateFunc) error

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// Close releases backend resources.
	Close() error
}

// RoyaltyStoreFactory creates stores from URI strings.
type RoyaltyStoreFactory interface {
	// StoreFor creates a store from a URI.
	// Supports memory://, sqlite://, file://, redis://
	StoreFor(uri string) (RoyaltyStore, error)
}
