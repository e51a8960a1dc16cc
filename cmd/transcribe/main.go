// Command transcribe runs an audio file through a recognizer session and
// prints the hypotheses.
//
// Usage:
//
//	transcribe [flags] <file>
//
// FLAC files are detected by their signature. Raw little-endian PCM needs
// --rate, and --format f32le for float samples.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
