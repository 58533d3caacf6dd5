package security

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventHoneypotTriggered  EventType = "honeypot_triggered"
	EventCSRFFailed         EventType = "csrf_failed"
	EventValidationFailed   EventType = "validation_failed"
	EventDispatchFailed     EventType = "dispatch_failed"
	EventPersistenceFailed  EventType = "persistence_failed"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	Service     string                 `json:"service"`
	Environment string                 `json:"env"`
	Level       string                 `json:"level"`
	Event       EventType              `json:"event"`
	IP          string                 `json:"ip,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	RequestID   string                 `json:"request_id,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *SecurityLogger

// InitSecurityLogger initializes the security logger with Zap
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	sl := &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}

	defaultLogger = sl
	return sl
}

// DefaultLogger returns the default security logger instance
func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		return InitSecurityLogger("centroservice-api", getEnvironment())
	}
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := zapcore.WarnLevel
	switch event.Event {
	case EventDispatchFailed, EventPersistenceFailed:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogRateLimitTriggered logs when the submission rate limit rejects a source IP
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventRateLimitTriggered,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
	})
}

// LogHoneypotTriggered logs a suspected bot submission that was dropped
func (sl *SecurityLogger) LogHoneypotTriggered(ctx context.Context, ip, userAgent, requestID string, silent bool) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventHoneypotTriggered,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Details:   map[string]interface{}{"silent_success": silent},
	})
}

// LogCSRFFailed logs a missing or mismatched CSRF token
func (sl *SecurityLogger) LogCSRFFailed(ctx context.Context, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventCSRFFailed,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
	})
}

// LogValidationFailed logs a rejected submission with the failing field names
func (sl *SecurityLogger) LogValidationFailed(ctx context.Context, ip, userAgent, requestID string, fields []string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventValidationFailed,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Details:   map[string]interface{}{"fields": fields},
	})
}

// LogDispatchFailed logs a mail transport failure for one recipient role
func (sl *SecurityLogger) LogDispatchFailed(ctx context.Context, recipient, requestID string, err error) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventDispatchFailed,
		RequestID: requestID,
		Details:   map[string]interface{}{"recipient": recipient, "error": err.Error()},
	})
}

// LogPersistenceFailed logs an audit log append failure
func (sl *SecurityLogger) LogPersistenceFailed(ctx context.Context, requestID string, err error) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventPersistenceFailed,
		RequestID: requestID,
		Details:   map[string]interface{}{"error": err.Error()},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// getEnvironment determines the current environment
func getEnvironment() string {
	env := os.Getenv("GIN_MODE")
	if env == "release" {
		return "production"
	}
	return "development"
}
