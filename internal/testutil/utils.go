package testutil

import (
	"bytes"
	"log"
	"os"
	"testing"
)

func TestLogger(t *testing.T) *log.Logger {
	logger := log.New(os.Stdout, "[hostly-test] ", log.LstdFlags)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
	})
	return logger
}

// CaptureLogger returns a logger writing into the returned buffer. Only use
// it where nothing logs from another goroutine.
func CaptureLogger(t *testing.T) (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := TestLogger(t)
	logger.SetOutput(buf)
	return logger, buf
}
