// Package main (cmd/royalty-cli) is the command-line client of the royalty
// registry API.
//
// Commands:
//
//	set     - Sign and submit a royalty config (--asset --receiver --fee-rate [--permanent])
//	get     - Compute the royalty of a sale (--asset --sale-price [--token-id])
//	config  - Show the stored config of an asset (--asset)
//	sign    - Print a signed set request for use with other HTTP tools
//
// The administrator key is read from --private-key or ROYALTY_PRIVATE_KEY and
// the server from --server-addr or ROYALTY_SERVER_ADDR.
package main
