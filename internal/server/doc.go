// Package server implements the reference reconciler HTTP API
//
// This package accepts flow operations, applies them with the operation
// engine against the stored version, and serves run records both on
// request and as a WebSocket stream
package server
