package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func callMain() (int, string) {
	exitCode := 0
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
	}

	// Capture output
	var buf bytes.Buffer
	oldStdout, oldStderr := os.Stdout, os.Stderr
	r, w, _ := os.Pipe()
	os.Stdout, os.Stderr = w, w

	outputDone := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		outputDone <- true
	}()

	RealMain()

	w.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr
	<-outputDone

	return exitCode, buf.String()
}

func TestMain(t *testing.T) {
	// Save original args
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           []string{"simpleboard"},
			expectedExit:   0,
			expectedOutput: "simpleboard [command]",
		},
		{
			name:           "help command",
			args:           []string{"simpleboard", "help"},
			expectedExit:   0,
			expectedOutput: "Available Commands:",
		},
		{
			name:           "version command",
			args:           []string{"simpleboard", "version"},
			expectedExit:   0,
			expectedOutput: "simpleboard version",
		},
		{
			name:           "unknown command",
			args:           []string{"simpleboard", "unknown"},
			expectedExit:   1,
			expectedOutput: `unknown command "unknown"`,
		},
		{
			name:           "restore without file",
			args:           []string{"simpleboard", "restore"},
			expectedExit:   1,
			expectedOutput: "accepts 1 arg(s), received 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set up test args
			os.Args = tt.args

			exitCode, output := callMain()

			// Verify output and exit code
			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
