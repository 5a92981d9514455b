//go:build !js || !wasm
// +build !js !wasm

package debug

import (
	"log"

	"github.com/recera/graphscope/pkg/capture"
	"github.com/recera/graphscope/pkg/eventloop"
	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
)

// EnableLogging routes the core packages' debug output to the standard logger
func EnableLogging() {
	EnableLoggingTo(log.Default())
}

// EnableLoggingTo routes debug output to l
func EnableLoggingTo(l *log.Logger) {
	logFn := func(args ...interface{}) {
		l.Println(args...)
	}

	capture.SetDebugLog(logFn)
	payload.SetDebugLog(logFn)
	session.SetDebugLog(logFn)
	eventloop.SetDebugLog(logFn)
}

// DisableLogging removes the debug hooks
func DisableLogging() {
	capture.SetDebugLog(nil)
	payload.SetDebugLog(nil)
	session.SetDebugLog(nil)
	eventloop.SetDebugLog(nil)
}
