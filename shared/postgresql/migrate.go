package postgresql

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate applies all pending SQL migrations from the given filesystem.
func (c *Client) Migrate(migrations fs.FS) error {
	goose.SetLogger(&gooseLogger{logger: c.logger})
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(c.db.DB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.logger.Info("Database migrations applied")
	return nil
}
