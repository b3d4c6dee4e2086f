package royalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/ruteri/royalty-registry/metrics"
)

// Registry implements interfaces.RoyaltyRegistry on top of a RoyaltyStore and
// an AssetAuthority.
type Registry struct {
	store     interfaces.RoyaltyStore
	authority interfaces.AssetAuthority
	log       *slog.Logger

	uncappedFeeRate bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithUncappedFeeRate accepts fee rates above FeeDenominator, so a royalty
// may exceed the sale price.
func WithUncappedFeeRate() Option {
	return func(r *Registry) {
		r.uncappedFeeRate = true
	}
}

// NewRegistry creates a registry over store, authorizing writes through authority.
func NewRegistry(store interfaces.RoyaltyStore, authority interfaces.AssetAuthority, log *slog.Logger, opts ...Option) *Registry {
	if log == nil {
		log = slog.Default()
	}

	r := &Registry{
		store:     store,
		authority: authority,
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set replaces the royalty config of asset on behalf of caller.
//
// Checks run in order: the caller must be the asset's resolved administrator
// (ErrUnauthorized), the fee rate must not exceed FeeDenominator unless the
// registry is uncapped (ErrInvalidFeeRate), and the stored config must not be
// permanent (ErrAlreadyLocked). The lock check runs inside the store's atomic
// update, after administrator resolution.
func (r *Registry) Set(ctx context.Context, asset interfaces.Address, caller interfaces.Address, config interfaces.RoyaltyConfig) error {
	return r.set(ctx, asset, caller, config, nil)
}

// SetAtRevision is Set that additionally requires the stored config to still
// be at revision. The revision is compared in the same atomic update as the
// lock, so each revision is written at most once.
func (r *Registry) SetAtRevision(ctx context.Context, asset interfaces.Address, caller interfaces.Address, config interfaces.RoyaltyConfig, revision uint64) error {
	return r.set(ctx, asset, caller, config, &revision)
}

func (r *Registry) set(ctx context.Context, asset interfaces.Address, caller interfaces.Address, config interfaces.RoyaltyConfig, expected *uint64) error {
	log := r.log.With("asset", asset.Hex(), "caller", caller.Hex())

	start := time.Now()
	admin, err := r.authority.ResolveAdministrator(ctx, asset)
	metrics.RecordOracleDuration(time.Since(start))
	if err != nil {
		log.Warn("Could not resolve asset administrator", "err", err)
		metrics.RecordSet(metrics.SetResultUnauthorized)
		return fmt.Errorf("%w: %w", interfaces.ErrUnauthorized, err)
	}

	if admin != caller {
		log.Warn("Rejected royalty update from non-administrator", "administrator", admin.Hex())
		metrics.RecordSet(metrics.SetResultUnauthorized)
		return fmt.Errorf("%w: administrator of %s is %s", interfaces.ErrUnauthorized, asset.Hex(), admin.Hex())
	}

	if !r.uncappedFeeRate && config.FeeRate > interfaces.FeeDenominator {
		metrics.RecordSet(metrics.SetResultInvalidFeeRate)
		return fmt.Errorf("%w: %d > %d", interfaces.ErrInvalidFeeRate, config.FeeRate, interfaces.FeeDenominator)
	}

	var stored interfaces.RoyaltyConfig
	err = r.store.Update(ctx, asset, func(current interfaces.RoyaltyConfig, exists bool) (interfaces.RoyaltyConfig, error) {
		if exists && current.Permanent {
			return current, interfaces.ErrAlreadyLocked
		}
		if expected != nil && current.Revision != *expected {
			return current, fmt.Errorf("%w: stored revision is %d, request was made at %d",
				interfaces.ErrStaleRevision, current.Revision, *expected)
		}
		stored = config
		stored.Revision = current.Revision + 1
		return stored, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrAlreadyLocked):
			log.Info("Rejected royalty update of locked config")
			metrics.RecordSet(metrics.SetResultLocked)
		case errors.Is(err, interfaces.ErrStaleRevision):
			log.Info("Rejected royalty update at stale revision", "err", err)
			metrics.RecordSet(metrics.SetResultStale)
		case errors.Is(err, interfaces.ErrInvalidFeeRate):
			metrics.RecordSet(metrics.SetResultInvalidFeeRate)
		default:
			log.Error("Failed to store royalty config", "store", r.store.Name(), "err", err)
			metrics.RecordSet(metrics.SetResultError)
		}
		return err
	}

	log.Info("Royalty config updated",
		"receiver", stored.Receiver.Hex(),
		"feeRate", stored.FeeRate,
		"permanent", stored.Permanent,
		"revision", stored.Revision)
	metrics.RecordSet(metrics.SetResultOK)
	return nil
}

// Get returns the receiver and the royalty owed for a sale at salePrice.
// An unconfigured asset yields the null address and a zero amount. The only
// error is a storage failure.
func (r *Registry) Get(ctx context.Context, asset interfaces.Address, tokenID *big.Int, salePrice *big.Int) (interfaces.RoyaltyInfo, error) {
	metrics.RecordGet()

	config, exists, err := r.store.Load(ctx, asset)
	if err != nil {
		return interfaces.RoyaltyInfo{Receiver: interfaces.NullAddress, Amount: new(big.Int)},
			fmt.Errorf("failed to load royalty config for %s: %w", asset.Hex(), err)
	}
	if !exists {
		return interfaces.RoyaltyInfo{Receiver: interfaces.NullAddress, Amount: new(big.Int)}, nil
	}

	return interfaces.RoyaltyInfo{
		Receiver: config.Receiver,
		Amount:   RoyaltyAmount(salePrice, config.FeeRate),
	}, nil
}

// Config returns the stored config of asset and whether one exists.
func (r *Registry) Config(ctx context.Context, asset interfaces.Address) (interfaces.RoyaltyConfig, bool, error) {
	config, exists, err := r.store.Load(ctx, asset)
	if err != nil {
		return interfaces.RoyaltyConfig{}, false, fmt.Errorf("failed to load royalty config for %s: %w", asset.Hex(), err)
	}
	return config, exists, nil
}
