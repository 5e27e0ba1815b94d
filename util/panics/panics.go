package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
)

const exitHandlerTimeout = 5 * time.Second

// HandlePanic recovers panics, logs them together with goroutineStackTrace
// (the stack of the code that spawned the panicking goroutine, if known) and
// exits the process.
func HandlePanic(log *logger.Logger, goroutineName string, goroutineStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}

	reason := fmt.Sprintf("Fatal error in goroutine `%s`: %+v", goroutineName, err)
	exit(log, reason, debug.Stack(), goroutineStackTrace)
}

// GoroutineWrapperFunc returns a function wrapping a func() error with
// HandlePanic, as expected by errgroup.Group.Go.
func GoroutineWrapperFunc(log *logger.Logger) func(name string, f func() error) func() error {
	return func(name string, f func() error) func() error {
		stackTrace := debug.Stack()
		return func() error {
			defer HandlePanic(log, name, stackTrace)
			return f()
		}
	}
}

// Exit prints the given reason to log and exits the process.
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil, nil)
}

// exit logs the reason and the given stack traces (if not nil), waits for the
// log to be written and exits.
func exit(log *logger.Logger, reason string, currentThreadStackTrace []byte, goroutineStackTrace []byte) {
	exitHandlerDone := make(chan struct{})
	go func() {
		log.Criticalf("Exiting: %s", reason)
		if goroutineStackTrace != nil {
			log.Criticalf("Goroutine stack trace: %s", goroutineStackTrace)
		}
		if currentThreadStackTrace != nil {
			log.Criticalf("Stack trace: %s", currentThreadStackTrace)
		}
		if log.Backend().IsRunning() {
			log.Backend().Close()
		} else {
			fmt.Fprintln(os.Stderr, reason)
		}
		close(exitHandlerDone)
	}()

	select {
	case <-time.After(exitHandlerTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't exit gracefully.")
	case <-exitHandlerDone:
	}
	os.Exit(1)
}
