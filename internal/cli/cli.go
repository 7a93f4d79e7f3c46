package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/nwpack/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags must precede the command; everything after the command is passed to
// it unchanged.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("nwpack", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
nwpack - Compile and package NW.js applications into native executables.

Usage:
  nwpack [options] COMMAND [ARGS...]

Commands:
`)
		app.PrintUsage(output)
		fmt.Fprint(output, `
Environment:
  NWPACK_HOME, NWPACK_ARCHIVE_DIR and NWPACK_PLATFORM provide defaults for
  the matching options. A .env file in the working directory is loaded first.

Options:
`)
		flagSet.PrintDefaults()
	}

	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	yesFlag := flagSet.Bool("yes", false, "Accept every remediation prompt and pick the first offered version.")
	yFlag := flagSet.Bool("y", false, "Accept every remediation prompt (shorthand).")
	runtimeRootFlag := flagSet.String("runtime-root", os.Getenv(app.EnvHome), "Directory holding installed runtimes. Defaults to ~/.nwpack/runtimes.")
	archiveDirFlag := flagSet.String("archive-dir", os.Getenv(app.EnvArchiveDir), "Directory holding runtime archives for install.")
	platformFlag := flagSet.String("platform", os.Getenv(app.EnvPlatform), "Target platform as <os>-<arch>, e.g. 'win-x64'. Defaults to the host.")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	progressURLFlag := flagSet.String("progress-url", "", "socket.io URL of a progress view to report to.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	command := flagSet.Arg(0)
	if command == "help" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Command:     command,
		Args:        flagSet.Args()[1:],
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		StatusPort:  *statusPortFlag,
		ProgressURL: *progressURLFlag,
		AssumeYes:   *yesFlag || *yFlag,
		RuntimeRoot: *runtimeRootFlag,
		ArchiveDir:  *archiveDirFlag,
		Platform:    *platformFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
