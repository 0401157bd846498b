package utils_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/temirov/treegen/internal/utils"
)

func TestNewApplicationLoggerLevels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		level         string
		expectEnabled zapcore.Level
		expectMuted   zapcore.Level
		expectError   bool
	}{
		{name: "default", level: "", expectEnabled: zapcore.InfoLevel, expectMuted: zapcore.DebugLevel},
		{name: "debug", level: "debug", expectEnabled: zapcore.DebugLevel, expectMuted: zapcore.DebugLevel - 1},
		{name: "upper_case_warn", level: "WARN", expectEnabled: zapcore.WarnLevel, expectMuted: zapcore.InfoLevel},
		{name: "unknown", level: "chatty", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			logger, loggerError := utils.NewApplicationLogger(testCase.level)
			if testCase.expectError {
				if loggerError == nil {
					t.Fatalf("expected error for level %q", testCase.level)
				}
				return
			}
			if loggerError != nil {
				t.Fatalf("NewApplicationLogger(%q) error: %v", testCase.level, loggerError)
			}
			core := logger.Core()
			if !core.Enabled(testCase.expectEnabled) {
				t.Fatalf("expected %s to be enabled", testCase.expectEnabled)
			}
			if core.Enabled(testCase.expectMuted) {
				t.Fatalf("expected %s to be muted", testCase.expectMuted)
			}
		})
	}
}
