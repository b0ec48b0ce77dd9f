// Package eth is a signing JSON-RPC client for Ethereum-compatible nodes.
//
// A Client composes a Transport (JSON-RPC over HTTP), a Signer (one private
// key), a Resolver (nonce, gas and fee filling) and ContractInterface values
// (ABI encoding) to deploy contracts, call them read-only, send transactions
// and wait for their receipts. Nothing is retried implicitly.
package eth
