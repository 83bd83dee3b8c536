// Package main runs navigation scenarios against a simulated world.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/localnav/config"
	"go.viam.com/localnav/internal/navsim"
	"go.viam.com/localnav/logging"
)

const (
	// Flags.
	flagConfig     = "config"
	flagLogLevel   = "log-level"
	flagLogFile    = "log-file"
	flagLogFileMB  = "log-file-max-mb"
	flagOutputDir  = "output-dir"
	flagImageScale = "image-scale"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "navsim",
		Usage:           "run local navigation scenarios in a simulated world",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run every scenario of a config and print a summary",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Usage:    "load configuration from `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagLogLevel,
						Usage: "override the config's log level",
					},
					&cli.StringFlag{
						Name:  flagLogFile,
						Usage: "also write logs to `FILE`, rotated by size",
					},
					&cli.IntFlag{
						Name:  flagLogFileMB,
						Value: 10,
						Usage: "size in megabytes after which the log file is rotated",
					},
					&cli.StringFlag{
						Name:  flagOutputDir,
						Usage: "write a grid image and a trajectory plot per scenario to `DIR`",
					},
					&cli.IntFlag{
						Name:  flagImageScale,
						Value: 4,
						Usage: "pixels per grid cell in grid images",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: schemaAction,
			},
		},
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Read(c.String(flagConfig))
	if err != nil {
		return err
	}

	levelName := cfg.LogLevel
	if c.IsSet(flagLogLevel) {
		levelName = c.String(flagLogLevel)
	}
	level, err := logging.LevelFromString(levelName)
	if err != nil {
		return err
	}
	logger := logging.NewLogger("navsim")
	logger.SetLevel(level)
	logging.ReplaceGlobal(logger)
	if path := c.String(flagLogFile); path != "" {
		fileAppender := logging.NewFileAppender(path, c.Int(flagLogFileMB))
		defer func() {
			if err := fileAppender.Close(); err != nil {
				fmt.Fprintln(c.App.ErrWriter, err)
			}
		}()
		logger.AddAppender(fileAppender)
	}

	report, err := navsim.RunAll(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	if err := report.WriteSummary(c.App.Writer); err != nil {
		return err
	}

	if dir := c.String(flagOutputDir); dir != "" {
		if err := writeOutputs(report, dir, c.Int(flagImageScale)); err != nil {
			return err
		}
		logger.Infow("wrote scenario outputs", "dir", dir)
	}

	if !report.OK() {
		failed := 0
		for _, run := range report.Runs {
			if !run.OK() {
				failed++
			}
		}
		msg := color.New(color.FgRed, color.Bold).Sprintf("%d of %d scenarios failed", failed, len(report.Runs))
		return cli.Exit(msg, 1)
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "all %d scenarios reached their goal\n", len(report.Runs))
	return nil
}

func writeOutputs(report *navsim.Report, dir string, scale int) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	for _, run := range report.Runs {
		name := run.Scenario.Name
		if err := navsim.SaveGridImage(run.Grid(), filepath.Join(dir, name+"-grid.png"), scale); err != nil {
			return err
		}
		if err := navsim.PlotTrajectory(run, filepath.Join(dir, name+"-path.png")); err != nil {
			return err
		}
	}
	return nil
}

func schemaAction(c *cli.Context) error {
	schema := jsonschema.Reflect(&config.Config{})
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
