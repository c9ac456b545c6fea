package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nikmy/txflow/pkg/errors"
)

func TestWrapper_levels(t *testing.T) {
	type testcase struct {
		name    string
		level   zapcore.Level
		log     func(l Logger)
		wantMsg []string
	}

	tests := [...]testcase{
		{
			name:  "info passes at info level",
			level: zap.InfoLevel,
			log: func(l Logger) {
				l.Infof("queue %s started", "main")
			},
			wantMsg: []string{"queue main started"},
		},
		{
			name:  "debug is filtered at info level",
			level: zap.InfoLevel,
			log: func(l Logger) {
				l.Debugf("noise")
				l.Debug(errors.Error("noise"))
			},
		},
		{
			name:  "nil errors are skipped",
			level: zap.DebugLevel,
			log: func(l Logger) {
				l.Error(nil)
				l.Warn(errors.Error("slow query"))
			},
			wantMsg: []string{"slow query"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(tt.level)
			l := Wrap(zap.New(core)).With("test")
			tt.log(l)

			var got []string
			for _, e := range logs.All() {
				require.Equal(t, "test", e.LoggerName)
				got = append(got, e.Message)
			}
			require.Equal(t, tt.wantMsg, got)
		})
	}
}
