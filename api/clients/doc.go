/*
Package clients provides the HTTP client of the royalty registry API.

RoyaltyClient signs writes with the caller's secp256k1 key, so the server
recovers the same address the on-chain owner() check expects. Reads need no
key.

	key, _ := crypto.HexToECDSA("...")
	client := clients.NewRoyaltyClient("http://localhost:8080", key)

	err := client.Set(asset, interfaces.RoyaltyConfig{Receiver: payee, FeeRate: 50_000})
	if errors.Is(err, interfaces.ErrAlreadyLocked) {
	    // config is frozen
	}

	resp, err := client.Get(asset, "1", "1000000000000000000")

MockRoyaltyProvider is a testify mock of api.RoyaltyProvider.
*/
package clients
