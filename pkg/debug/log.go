//go:build js && wasm
// +build js,wasm

package debug

import (
	"fmt"
	"syscall/js"

	"github.com/recera/graphscope/pkg/capture"
	"github.com/recera/graphscope/pkg/eventloop"
	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
)

// EnableLogging enables debug logging for the core packages
func EnableLogging() {
	// console.log only accepts js-convertible values
	logFn := func(args ...interface{}) {
		js.Global().Get("console").Call("log", fmt.Sprintln(args...))
	}

	capture.SetDebugLog(logFn)
	payload.SetDebugLog(logFn)
	session.SetDebugLog(logFn)
	eventloop.SetDebugLog(logFn)
}
