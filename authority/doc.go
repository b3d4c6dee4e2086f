// Package authority provides interfaces.AssetAuthority implementations that
// answer "who administers asset X".
//
// OnchainAuthority calls owner() on the asset contract through any
// bind.ContractCaller. Addresses without code, contracts whose owner() reverts
// or returns nothing, and a zero owner are reported as
// interfaces.ErrAdministratorNotFound; transport failures are returned
// unchanged so operators can tell an unreachable node from a foreign asset.
//
// StaticAuthority serves a fixed table, optionally loaded from YAML, for
// development setups and tests.
//
// MockAuthority is a testify mock.
package authority
