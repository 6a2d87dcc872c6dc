//go:build debug

package fplus

// debugChecks enables invariant panics in debug builds.
const debugChecks = true
