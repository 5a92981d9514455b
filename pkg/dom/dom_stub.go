//go:build !js || !wasm
// +build !js !wasm

// Package dom binds the session to the browser. Its contents exist only in
// js/wasm builds.
package dom
