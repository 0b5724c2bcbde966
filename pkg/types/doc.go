// Package types defines the Store interface, the value types it persists, the
// backend configuration, and the standard errors for the folio storage system.
package types
