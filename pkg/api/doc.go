// Package api defines the core data types shared by the flow editor engine
//
// This package contains the step tree model, flow versions, the closed set of
// structural operations, execution records, and the HTTP messages exchanged
// with the remote reconciler
package api
