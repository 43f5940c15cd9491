package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sjt-studio/internal/domain"
)

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := NewLogObserver(zap.New(core))

	obs.OnAttempt(domain.ProgressEvent{RunID: "r", Competency: "Agility", Attempt: 1, Attempts: 3, Total: 3})
	obs.OnFailure(domain.AttemptFailure{Competency: "Agility", Attempt: 1, Code: domain.ErrParse, Message: "bad"})

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "Agility", entries[0].ContextMap()["competency"])
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "PARSE_ERROR", entries[1].ContextMap()["code"])
	}
}
