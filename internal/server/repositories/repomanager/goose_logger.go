package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnsonjew/learning-journal/internal/logging"
	"github.com/pressly/goose/v3"
)

// gooseLogger routes goose progress output into the application logger.
type gooseLogger struct {
	logger logging.Logger
}

var _ goose.Logger = gooseLogger{}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs and panics; goose expects it not to return.
func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	l.logger.Error(context.Background(), msg)
	panic(msg)
}
