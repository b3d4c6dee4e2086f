package interfaces

import "errors"

var (
	// ErrUnauthorized is returned when the caller is not the resolved
	// administrator of the asset, or when no administrator can be resolved.
	ErrUnauthorized = errors.New("caller is not the asset administrator")

	// ErrAlreadyLocked is returned for any write to a permanently locked config.
	ErrAlreadyLocked = errors.New("royalty config is permanently locked")

	// ErrInvalidFeeRate is returned when a fee rate exceeds FeeDenominator.
	ErrInvalidFeeRate = errors.New("fee rate exceeds denominator")

	// ErrAdministratorNotFound is returned by an AssetAuthority when the asset
	// has no resolvable administrator (no contract, no owner, reverted call).
	ErrAdministratorNotFound = errors.New("asset administrator not found")

	// ErrStaleRevision is returned by SetAtRevision when the config was
	// written after the caller observed it.
	ErrStaleRevision = errors.New("royalty config revision is stale")

	// ErrWriteConflict is returned when a store gives up on an update that
	// kept losing races against concurrent writers.
	ErrWriteConflict = errors.New("royalty config update kept conflicting")

	// ErrStoreUnavailable is returned when a royalty store backend cannot be reached.
	ErrStoreUnavailable = errors.New("royalty store unavailable")

	// ErrInvalidStoreURI is returned when a store URI is malformed or unsupported.
	ErrInvalidStoreURI = errors.New("invalid royalty store URI")

	// ErrInvalidAddress is returned when a string is not a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")
)

// Error codes exposed over the wire. They match the revert reasons of the
// on-chain royalty registry contract.
const (
	CodeUnauthorized   = "1"
	CodeAlreadyLocked  = "3"
	CodeInvalidFeeRate = "4"
)

// Codes of failures that only exist off-chain.
const (
	CodeStaleRevision = "stale_revision"
	CodeWriteConflict = "write_conflict"
)

// ErrorCode maps a registry error to its wire code, or "" if it has none.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrAlreadyLocked):
		return CodeAlreadyLocked
	case errors.Is(err, ErrInvalidFeeRate):
		return CodeInvalidFeeRate
	case errors.Is(err, ErrStaleRevision):
		return CodeStaleRevision
	case errors.Is(err, ErrWriteConflict):
		return CodeWriteConflict
	default:
		return ""
	}
}

// ErrorFromCode is the inverse of ErrorCode. Unknown codes yield nil.
func ErrorFromCode(code string) error {
	switch code {
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeAlreadyLocked:
		return ErrAlreadyLocked
	case CodeInvalidFeeRate:
		return ErrInvalidFeeRate
	case CodeStaleRevision:
		return ErrStaleRevision
	case CodeWriteConflict:
		return ErrWriteConflict
	default:
		return nil
	}
}
