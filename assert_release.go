//go:build !debug

package fplus

const debugChecks = false
