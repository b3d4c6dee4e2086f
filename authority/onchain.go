package authority

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/ruteri/royalty-registry/interfaces"
)

// OwnableABI is the subset of the Ownable interface the resolver calls.
const OwnableABI = `[{"inputs":[],"name":"owner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

// OnchainAuthority resolves an asset's administrator by calling owner() on
// the asset contract.
type OnchainAuthority struct {
	caller  bind.ContractCaller
	abi     abi.ABI
	timeout time.Duration
	log     *slog.Logger
}

// NewOnchainAuthority creates a resolver reading through caller, typically an
// *ethclient.Client.
func NewOnchainAuthority(caller bind.ContractCaller, log *slog.Logger) (*OnchainAuthority, error) {
	parsed, err := abi.JSON(strings.NewReader(OwnableABI))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	return &OnchainAuthority{
		caller: caller,
		abi:    parsed,
		log:    log,
	}, nil
}

// SetTimeout bounds every resolution. Zero disables the bound.
func (a *OnchainAuthority) SetTimeout(timeout time.Duration) {
	a.timeout = timeout
}

// ResolveAdministrator returns the owner of the asset contract.
// An address without code, a reverting, empty or malformed owner() call and a
// zero owner all yield interfaces.ErrAdministratorNotFound. RPC failures are
// returned as is.
func (a *OnchainAuthority) ResolveAdministrator(ctx context.Context, asset interfaces.Address) (interfaces.Address, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	code, err := a.caller.CodeAt(ctx, asset, nil)
	if err != nil {
		return interfaces.NullAddress, fmt.Errorf("failed to fetch code at %s: %w", asset.Hex(), err)
	}
	if len(code) == 0 {
		return interfaces.NullAddress, fmt.Errorf("%w: no contract at %s", interfaces.ErrAdministratorNotFound, asset.Hex())
	}

	input, err := a.abi.Pack("owner")
	if err != nil {
		return interfaces.NullAddress, err
	}

	output, err := a.caller.CallContract(ctx, ethereum.CallMsg{To: &asset, Data: input}, nil)
	if err != nil {
		if isRevert(err) {
			a.log.Debug("owner() reverted", "asset", asset.Hex(), "err", err)
			return interfaces.NullAddress, fmt.Errorf("%w: owner() reverted on %s: %v", interfaces.ErrAdministratorNotFound, asset.Hex(), err)
		}
		return interfaces.NullAddress, fmt.Errorf("owner() call on %s failed: %w", asset.Hex(), err)
	}
	if len(output) == 0 {
		return interfaces.NullAddress, fmt.Errorf("%w: owner() returned no data on %s", interfaces.ErrAdministratorNotFound, asset.Hex())
	}

	values, err := a.abi.Unpack("owner", output)
	if err != nil || len(values) != 1 {
		return interfaces.NullAddress, fmt.Errorf("%w: malformed owner() output on %s", interfaces.ErrAdministratorNotFound, asset.Hex())
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return interfaces.NullAddress, fmt.Errorf("%w: malformed owner() output on %s", interfaces.ErrAdministratorNotFound, asset.Hex())
	}
	if owner == interfaces.NullAddress {
		return interfaces.NullAddress, fmt.Errorf("%w: %s has no owner", interfaces.ErrAdministratorNotFound, asset.Hex())
	}

	return owner, nil
}

// revertErrorCode is the JSON-RPC code of a revert that carries data.
const revertErrorCode = 3

func isRevert(err error) bool {
	if errors.Is(err, vm.ErrExecutionReverted) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	// Reverts without data reach RPC clients as a plain -32000 error.
	return strings.Contains(err.Error(), vm.ErrExecutionReverted.Error())
}
