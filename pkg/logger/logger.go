package logger

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
	atom zap.AtomicLevel

	buildLogger = func(cfg zap.Config) (*zap.Logger, error) {
		return cfg.Build(zap.AddCallerSkip(1))
	}
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	AccountKey   ContextKey = "account"
)

// contextFields lists the request scoped values copied onto every log line.
// gin stores the request id under the plain string key, so both are checked.
var contextFields = []struct {
	key   interface{}
	field string
}{
	{"request_id", "request_id"},
	{RequestIDKey, "request_id"},
	{AccountKey, "account"},
}

// Init builds the process logger once. development gets colored console
// output, anything else JSON with ISO8601 timestamps.
func Init(env string) {
	once.Do(func() {
		var config zap.Config
		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			config = zap.NewProductionConfig()
			config.EncoderConfig.TimeKey = "timestamp"
			config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}

		built, err := buildLogger(config)
		if err != nil {
			panic(err)
		}
		log = built.With(zap.String("service", "property-registry"))
		atom = config.Level
	})
}

// GetLogger returns the process logger, a no-op logger before Init
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// Replace swaps the process logger for l and returns a func restoring the
// previous one
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

// SetLevel changes the level of an initialized logger at runtime
func SetLevel(level zapcore.Level) {
	if log != nil {
		atom.SetLevel(level)
	}
}

// WithContext returns the logger annotated with the request id and wallet
// account found in ctx
func WithContext(ctx context.Context) *zap.Logger {
	base := GetLogger()
	if ctx == nil {
		return base
	}

	fields := make([]zap.Field, 0, 2)
	seen := make(map[string]bool, 2)
	for _, cf := range contextFields {
		if seen[cf.field] {
			continue
		}
		if value, ok := ctx.Value(cf.key).(string); ok && value != "" {
			fields = append(fields, zap.String(cf.field, value))
			seen[cf.field] = true
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// Request is one served HTTP request
type Request struct {
	Method   string
	Path     string
	Status   int
	Latency  time.Duration
	ClientIP string
	Operator string
	Replayed bool
}

// Level picks the log level for a served request: server errors at error,
// client errors at warn, everything else at info
func (r Request) Level() zapcore.Level {
	switch {
	case r.Status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case r.Status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// LogRequest writes one access log line for r
func LogRequest(ctx context.Context, r Request) {
	l := WithContext(ctx)
	ce := l.Check(r.Level(), "HTTP Request")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", r.Status),
		zap.Duration("latency", r.Latency),
		zap.String("client_ip", r.ClientIP),
	}
	if r.Operator != "" {
		fields = append(fields, zap.String("operator", r.Operator))
	}
	if r.Replayed {
		fields = append(fields, zap.Bool("idempotent_replay", true))
	}
	ce.Write(fields...)
}
