/*
Package api defines the wire contract of the royalty registry HTTP API.

It holds the request and response types shared by the server in httpserver
and the client in api/clients, the server configuration, and the request
signing scheme.

# Endpoints

	PUT /api/royalty/{asset_address}          signed SetRoyaltyRequest
	GET /api/royalty/{asset_address}          ?token_id=&sale_price= -> GetRoyaltyResponse
	GET /api/royalty/{asset_address}/config   RoyaltyConfigResponse

Failures carry an ErrorResponse. Registry errors keep their codes: "1" for
an unauthorized caller, "3" for a locked config and "4" for a fee rate above
the denominator. A request made against an outdated revision fails with 412
and "stale_revision".

# Request Signing

A write is authorized by the address recovered from the X-Royalty-Signature
header, a secp256k1 signature over the EIP-191 personal message formed by
the URL path followed by the raw body. The body carries the config revision
it was made against, so a request applies at most once, and a deadline after
which an unused request expires.

	body, _ := json.Marshal(api.SetRoyaltyRequest{...})
	sig, _ := api.SignRequest(key, "/api/royalty/0x4dfc...", body)
	req.Header.Set(api.SignatureHeader, sig)
*/
package api
