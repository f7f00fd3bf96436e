package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mealprep/internal"
	pkgconfig "github.com/starford/mealprep/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func planRequest(cmd *cli.Command) internal.PlanRequest {
	return internal.PlanRequest{
		Household: cmd.String("household"),
		Week:      cmd.String("week"),
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func exportCalendar(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	path, err := internal.ExportCalendar(ctx, planRequest(cmd), cmd.String("out"), opts...)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintln(os.Stdout, path)
	return nil
}

func validatePlan(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.ValidatePlan(ctx, planRequest(cmd), os.Stdout, opts...); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func planFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "household",
			Usage: "Household id (defaults to auth.default_household)",
		},
		&cli.StringFlag{
			Name:     "week",
			Aliases:  []string{"w"},
			Usage:    "Week start date, a Monday (YYYY-MM-DD)",
			Required: true,
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "mealprep",
		Usage:   "Household meal planning with plan validation and calendar reminders",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Write a week's plan and reminders as an .ics file",
				Action: exportCalendar,
				Flags: append(planFlags(), &cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "Output file or directory",
					Value:   ".",
				}),
			},
			{
				Name:   "validate",
				Usage:  "Print a week's plan warnings as JSON",
				Action: validatePlan,
				Flags:  planFlags(),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
