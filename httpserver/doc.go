/*
Package httpserver exposes a royalty registry over HTTP.

# Routes

	PUT /api/royalty/{asset_address}          update the royalty config (signed)
	GET /api/royalty/{asset_address}          royalty for ?sale_price=&token_id=
	GET /api/royalty/{asset_address}/config   stored config

	GET /livez /readyz /drain /undrain        health and load balancer control
	/debug/*                                  pprof, when enabled

Writes are authorized by the address recovered from the X-Royalty-Signature
header (see api.SignRequest). That address is passed to the registry as the
caller, so only the administrator of the asset can change its royalty.

# Status Codes

  - 400: malformed address, body, query or a fee rate above the denominator (code "4")
  - 401: missing or invalid signature, or an expired deadline
  - 403: caller is not the asset administrator (code "1")
  - 409: config is permanently locked (code "3")
  - 503: store backend unavailable
  - 500: anything else

Error bodies are api.ErrorResponse.

# Readiness

/readyz fails while the server is drained or the store reports itself
unavailable.
*/
package httpserver
