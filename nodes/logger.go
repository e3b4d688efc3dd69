package nodes

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/purefictiongames/wiregraph/errors"
	"github.com/purefictiongames/wiregraph/node"
)

// loggerConfig configures a logger node.
type loggerConfig struct {
	// Level is the slog level payloads are written at: debug, info, warn,
	// error. Defaults to info.
	Level string `json:"level"`
	// Message is the log line's message text. Defaults to "payload".
	Message string `json:"message"`
}

// LogSink writes every payload it receives to the structured log. A terminal
// node for graphs that need observable side channels without custom classes.
type LogSink struct {
	*node.BaseNode
	level   slog.Level
	message string
}

// NewLogSink is the node.Factory for the "logger" class.
func NewLogSink(id string, rawConfig json.RawMessage, deps node.Dependencies) (node.Node, error) {
	cfg := loggerConfig{Level: "info", Message: "payload"}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, errors.WrapConfig(err, "LogSink", "NewLogSink", "config parse")
		}
	}
	if cfg.Message == "" {
		cfg.Message = "payload"
	}

	s := &LogSink{
		BaseNode: node.NewBaseNode(id, "logger", deps),
		level:    parseLevel(cfg.Level),
		message:  cfg.Message,
	}
	s.RegisterHandler("onLog", s.onLog)
	return s, nil
}

func (s *LogSink) onLog(_ node.Node, payload node.Payload) error {
	attrs := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	s.Logger().Log(context.Background(), s.level, s.message, attrs...)
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
