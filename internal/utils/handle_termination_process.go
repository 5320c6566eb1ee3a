package utils

import (
	"os"
	"os/signal"
	"syscall"
)

// HandleTerminationProcess runs cleanup once on SIGINT/SIGTERM and exits.
func HandleTerminationProcess(cleanup func() error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		code := 0
		if err := cleanup(); err != nil {
			code = 1
		}
		os.Exit(code)
	}()
}
