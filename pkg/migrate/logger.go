package migrate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/spesa/pkg/logger"
)

// gooseLogger routes goose output into the structured log so the terminal UI
// is never written to.
type gooseLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

// SetLogger installs logg as goose's logger. A nil logger silences goose.
func SetLogger(ctx context.Context, logg *logger.Logger) {
	if logg == nil {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(gooseLogger{ctx: ctx, logg: logg})
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logg.Debug(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.logg.Error(g.ctx, "goose fatal", fmt.Errorf("%s", msg))
	os.Exit(1)
}
