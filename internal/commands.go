package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/mealprep/internal/mcpserver"
)

// PlanRequest names a household's week for the offline commands.
// An empty Household means the configured default household.
type PlanRequest struct {
	Household string
	Week      string
}

func (a *application) household(req PlanRequest) string {
	if req.Household != "" {
		return req.Household
	}
	return a.config.Auth.DefaultHousehold
}

// ExportCalendar writes the week's calendar to out. When out is a directory
// (or empty, meaning the working directory) the file is named mealprep_<week>.ics.
// It returns the path written.
func ExportCalendar(ctx context.Context, req PlanRequest, out string, opts ...Option) (string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return "", err
	}
	c, err := app.setup(ctx, false)
	if err != nil {
		return "", err
	}
	defer c.Close()

	cal, err := c.svc.ExportCalendar(ctx, app.household(req), req.Week)
	if err != nil {
		return "", err
	}

	if out == "" {
		out = "."
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, cal.Filename)
	}
	if err := os.WriteFile(out, []byte(cal.Body), 0o644); err != nil {
		return "", fmt.Errorf("write calendar: %w", err)
	}
	c.logger.Info("Calendar exported",
		slog.String("household", app.household(req)),
		slog.String("week", cal.WeekStartDate),
		slog.String("path", out),
	)
	return out, nil
}

// ValidatePlan prints the week's warnings to w as {"warnings": [...]}.
func ValidatePlan(ctx context.Context, req PlanRequest, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup(ctx, false)
	if err != nil {
		return err
	}
	defer c.Close()

	warnings, err := c.svc.ValidatePlan(ctx, app.household(req), req.Week)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"warnings": warnings})
}

// ServeMCP runs the MCP server on stdin/stdout for the default household.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	c, err := app.setup(ctx, false)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio", slog.String("household", app.config.Auth.DefaultHousehold))
	return mcpserver.New(c.svc, app.config.Auth.DefaultHousehold, app.version).ServeStdio()
}
