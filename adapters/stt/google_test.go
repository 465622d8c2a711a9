package stt_test

import (
	"github.com/Shawnzeng217/AI-Translator/adapters/stt"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
)

var _ repositories.SpeechRecognizer = &stt.GoogleRecognizer{}
var _ repositories.SpeechRecognizer = &stt.MockRecognizer{}
