package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/nwpack/internal/config"
	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/prereq"
	"github.com/specialistvlad/nwpack/internal/session"
)

// Dispatch runs the named command. A missing prerequisite is offered for
// remediation and, once resolved, the command runs again; each kind of
// prerequisite is remediated at most once per dispatch. A command requested
// while another one holds the session only brings the progress view to the
// front.
func (a *App) Dispatch(ctx context.Context, name string, args []string) error {
	logger := ctxlog.FromContext(ctx).With("command", name)
	remediated := make(map[prereq.Kind]bool)

	for {
		err := a.runCommand(ctx, name, args)
		pe, ok := prereq.As(err)
		if !ok || remediated[pe.Kind] {
			if err != nil {
				logger.Error("Command failed.", "error", err)
			}
			return err
		}
		remediated[pe.Kind] = true

		logger.Warn("Missing prerequisite.", "prerequisite", pe.Kind.String(), "version", pe.Version)
		fixed, rerr := a.remediate(ctx, name, args, pe)
		if rerr != nil {
			logger.Error("Remediation failed.", "prerequisite", pe.Kind.String(), "error", rerr)
			return fmt.Errorf("failed to resolve %s: %w", pe.Kind, rerr)
		}
		if !fixed {
			return err
		}
		logger.Info("Prerequisite resolved, running the command again.", "prerequisite", pe.Kind.String())
	}
}

// runCommand runs one command inside the session.
func (a *App) runCommand(ctx context.Context, name string, args []string) (err error) {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command '%s'", name)
	}
	logger := ctxlog.FromContext(ctx)

	release, err := a.session.Acquire(name, cmd.projectDir(args))
	if errors.Is(err, session.ErrBusy) {
		logger.Warn("Another command is running, showing its progress.", "command", name, "running", a.session.Status().Command)
		a.reporter.Show()
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			err = fmt.Errorf("failed to restore working directory: %w", rerr)
		}
	}()

	logger.Debug("Command started.", "command", name, "args", args)
	return cmd.run(a, ctx, args)
}

// remediate resolves pe after asking for consent. It reports false when the
// user declined.
func (a *App) remediate(ctx context.Context, name string, args []string, pe *prereq.Error) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	dir := commands[name].projectDir(args)
	if dir == "" {
		dir = "."
	}

	switch pe.Kind {
	case prereq.NeedInstall:
		question := "No NW.js runtime is installed. Install one?"
		var installArgs []string
		if pe.Version != "" {
			question = fmt.Sprintf("NW.js %s is not installed. Install it?", pe.Version)
			installArgs = []string{pe.Version}
		}
		ok, err := a.prompter.Confirm(question)
		if err != nil || !ok {
			return false, err
		}
		return true, a.runCommand(ctx, "install", installArgs)

	case prereq.NeedPublishConfig:
		ok, err := a.prompter.Confirm(fmt.Sprintf("%s is missing. Generate it?", config.PublishFiles[0]))
		if err != nil || !ok {
			return false, err
		}
		path, err := config.WriteDefaultPublish(dir)
		if err != nil {
			return false, err
		}
		logger.Info("📝 Default publish config written.", "path", path)
		return true, nil

	case prereq.NeedManifest:
		ok, err := a.prompter.Confirm(fmt.Sprintf("%s is missing. Generate it?", config.ManifestFile))
		if err != nil || !ok {
			return false, err
		}
		path, err := config.WriteDefaultManifest(dir)
		if err != nil {
			return false, err
		}
		logger.Info("📝 Default manifest written.", "path", path)
		return true, nil
	}
	return false, fmt.Errorf("no remediation for %s", pe.Kind)
}
