// Package main (cmd/royalty-server) runs the royalty registry HTTP API.
//
// The server wires a royalty store (memory, SQLite or Redis, chosen by
// --store-uri), an asset authority and the registry behind the HTTP routes of
// package httpserver. Prometheus metrics are served on --metrics-addr.
//
// With --authority onchain (the default) the administrator of an asset is the
// address returned by owner() on the asset contract, read through --rpc-addr.
// With --authority static it comes from the YAML file named by
// --static-authority-file:
//
//	assets:
//	  "0x4dfc2bEbc82201515e6b5C21e0FA7A7eEC06aAe5": "0x73316d4224263496201c3420b36cdda9c0249574"
//
// Every flag can also be set through a ROYALTY_* environment variable, for
// example ROYALTY_STORE_URI=sqlite:///var/lib/royalty/royalty.db.
package main
