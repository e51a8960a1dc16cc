package main

import (
	"github.com/eleven-am/voice-recognizer/internal/bootstrap"
)

// @title Voice Recognizer API
// @version 1.0.0
// @description Streaming and batch speech recognition on an embedded decoder

// @BasePath /api/v1

func main() {
	bootstrap.Run()
}
