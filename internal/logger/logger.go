package logger

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	reqctx "github.com/baechuer/wastewise/services/identity-service/internal/pkg/context"
)

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT") // "json" or "console"
	if format == "" {
		format = "console"
	}

	var ctx zerolog.Context
	if format == "json" {
		ctx = zerolog.New(w).With().Timestamp()
	} else {
		ctx = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp()
	}

	if caller, _ := strconv.ParseBool(os.Getenv("LOG_CALLER")); caller {
		ctx = ctx.Caller()
	}

	Logger = ctx.Logger().Level(level).With().Str("service", "identity-service").Logger()

	// set global
	zlog.Logger = Logger
}

// WithCtx returns the package logger tagged with the request id from ctx, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if id := reqctx.GetRequestID(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}

// Component returns a child logger for a named subsystem.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
