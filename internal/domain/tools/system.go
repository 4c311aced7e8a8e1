package tools

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SystemProvider implements alert and log
type SystemProvider struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewSystemProvider creates a system provider
func NewSystemProvider(notifier Notifier, logger *zap.Logger) *SystemProvider {
	return &SystemProvider{notifier: notifier, logger: logger.Named("app")}
}

// Category returns system
func (s *SystemProvider) Category() types.Category {
	return types.CategorySystem
}

// Handlers returns the system actions
func (s *SystemProvider) Handlers() map[string]Handler {
	return map[string]Handler{
		"alert": s.alert,
		"log":   s.log,
	}
}

func (s *SystemProvider) alert(_ context.Context, params map[string]interface{}) (interface{}, error) {
	s.notifier.Notify(Notification{
		Kind:    NotifyAlert,
		Message: GetString(params, "message", ""),
	})
	return true, nil
}

func (s *SystemProvider) log(_ context.Context, params map[string]interface{}) (interface{}, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(GetString(params, "level", "info")))
	if err != nil {
		level = zapcore.InfoLevel
	}
	// dpanic, panic and fatal would take the host down
	if level > zapcore.ErrorLevel {
		level = zapcore.ErrorLevel
	}
	if ce := s.logger.Check(level, GetString(params, "message", "")); ce != nil {
		ce.Write()
	}
	return true, nil
}
