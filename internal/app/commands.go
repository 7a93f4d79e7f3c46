package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/nwpack/internal/config"
	"github.com/specialistvlad/nwpack/internal/ctxlog"
	"github.com/specialistvlad/nwpack/internal/pipeline"
	"github.com/specialistvlad/nwpack/internal/prereq"
	"github.com/specialistvlad/nwpack/internal/runtime"
	"golang.org/x/mod/semver"
)

// command is one entry of the command surface.
type command struct {
	usage   string
	summary string
	// dir returns the project directory the command runs in, or "" to keep
	// the working directory.
	dir func(args []string) string
	run func(a *App, ctx context.Context, args []string) error
}

func (c command) projectDir(args []string) string {
	if c.dir == nil {
		return ""
	}
	return c.dir(args)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"install": {usage: "install [version]", summary: "Install a runtime and its SDK from the archive directory.", run: (*App).install},
		"remove":  {usage: "remove [version]", summary: "Remove an installed runtime and its SDK.", run: (*App).remove},
		"compile": {usage: "compile [version] <script> [output]", summary: "Compile one script with the SDK compiler.", run: (*App).compile},
		"publish": {usage: "publish [dir]", summary: "Package the project in dir as an executable.", dir: firstArgOrDot, run: (*App).publish},
		"list":    {usage: "list [--all]", summary: "List installed runtimes, or every known one with --all.", run: (*App).list},
		"init":    {usage: "init [dir]", summary: "Write default nwjs.publish.json and package.json files.", dir: firstArgOrDot, run: (*App).init},
	}
}

func firstArgOrDot(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// Commands returns the command names in alphabetical order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PrintUsage writes one line per command to w.
func PrintUsage(w io.Writer) {
	for _, name := range Commands() {
		c := commands[name]
		fmt.Fprintf(w, "  %-36s %s\n", c.usage, c.summary)
	}
}

// UsageError reports command arguments that do not match the command usage.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// chooseVersion asks the user to pick one of versions.
func (a *App) chooseVersion(question string, versions []runtime.Version) (runtime.Version, bool, error) {
	options := make([]string, len(versions))
	byText := make(map[string]runtime.Version, len(versions))
	for i, v := range versions {
		options[i] = v.String()
		byText[v.String()] = v
	}
	choice, ok, err := a.prompter.Choose(question, options)
	if err != nil || !ok {
		return runtime.Version{}, false, err
	}
	return byText[choice], true, nil
}

func notSDK(v runtime.Version) bool { return !v.SDK }

func (a *App) install(ctx context.Context, args []string) error {
	logger := ctxlog.FromContext(ctx)

	var v runtime.Version
	if len(args) > 0 {
		var err error
		if v, err = a.registry.Version(args[0]); err != nil {
			return err
		}
	} else {
		installed, err := a.registry.List(nil)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(installed))
		for _, iv := range installed {
			have[iv.DirName()] = true
		}
		available, err := a.registry.ListAll(func(v runtime.Version) bool {
			return !v.SDK && !have[v.DirName()]
		})
		if err != nil {
			return err
		}
		if len(available) == 0 {
			return fmt.Errorf("no runtime versions available to install, add them to %s", filepath.Join(a.registry.Root, runtime.IndexFile))
		}
		var ok bool
		if v, ok, err = a.chooseVersion("Select install version", available); err != nil || !ok {
			return err
		}
	}

	v = v.RuntimeVersion()
	installed := false
	for _, dist := range []runtime.Version{v, v.SDKVersion()} {
		a.reporter.Log("Installing " + dist.DirName())
		ok, err := dist.Install(ctx)
		if err != nil {
			return err
		}
		installed = installed || ok
	}
	if installed {
		logger.Info("✅ Install complete.", "version", v.Version)
	} else {
		logger.Info("NW.js already installed.", "version", v.Version)
	}
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	logger := ctxlog.FromContext(ctx)

	var v runtime.Version
	if len(args) > 0 {
		var err error
		if v, err = a.registry.Version(args[0]); err != nil {
			return err
		}
	} else {
		installed, err := a.registry.List(notSDK)
		if err != nil {
			return err
		}
		var ok bool
		if v, ok, err = a.chooseVersion("Select remove version", installed); err != nil || !ok {
			if err == nil && len(installed) == 0 {
				logger.Info("No NW.js runtime installed.")
			}
			return err
		}
	}

	v = v.RuntimeVersion()
	removed := false
	for _, dist := range []runtime.Version{v, v.SDKVersion()} {
		ok, err := dist.Remove()
		if err != nil {
			return err
		}
		removed = removed || ok
	}
	if removed {
		logger.Info("🗑️ Remove complete.", "version", v.Version)
	} else {
		logger.Info("NW.js already removed.", "version", v.Version)
	}
	return nil
}

// isVersion reports whether s reads as a runtime version rather than a path.
func isVersion(s string) bool {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "v"), "-sdk")
	return semver.IsValid("v" + s)
}

func (a *App) compile(ctx context.Context, args []string) error {
	usage := &UsageError{Usage: commands["compile"].usage}
	var versionText string
	if len(args) > 1 && isVersion(args[0]) {
		versionText, args = args[0], args[1:]
	}
	if len(args) == 0 || len(args) > 2 {
		return usage
	}
	req := pipeline.CompileRequest{Script: args[0]}
	if len(args) == 2 {
		req.Output = args[1]
	}

	if versionText != "" {
		v, err := a.registry.Version(versionText)
		if err != nil {
			return err
		}
		req.Version = v.RuntimeVersion()
	} else {
		installed, err := a.registry.List(notSDK)
		if err != nil {
			return err
		}
		switch len(installed) {
		case 0:
			return prereq.Install("")
		case 1:
			req.Version = installed[0]
		default:
			v, ok, err := a.chooseVersion("Select compiler version", installed)
			if err != nil || !ok {
				return err
			}
			req.Version = v
		}
	}

	out, err := a.newPipeline().Compile(ctx, req)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("✅ Script compiled.", "script", req.Script, "output", out, "version", req.Version.String())
	return nil
}

func (a *App) publish(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return &UsageError{Usage: commands["publish"].usage}
	}
	_, err := a.newPipeline().Publish(ctx)
	return err
}

func (a *App) list(ctx context.Context, args []string) error {
	flagSet := flag.NewFlagSet("list", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	all := flagSet.Bool("all", false, "Include versions that are not installed.")
	if err := flagSet.Parse(args); err != nil || flagSet.NArg() > 0 {
		return &UsageError{Usage: commands["list"].usage}
	}

	var (
		versions []runtime.Version
		err      error
	)
	if *all {
		versions, err = a.registry.ListAll(nil)
	} else {
		versions, err = a.registry.List(nil)
	}
	if err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Debug("Versions listed.", "count", len(versions), "all", *all)
	for _, v := range versions {
		line := v.String()
		if *all && v.Installed() {
			line += " (installed)"
		}
		fmt.Fprintln(a.outW, line)
	}
	return nil
}

func (a *App) init(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return &UsageError{Usage: commands["init"].usage}
	}
	logger := ctxlog.FromContext(ctx)

	if _, err := config.LoadPublish(ctx, "."); errors.Is(err, config.ErrNotFound) {
		path, err := config.WriteDefaultPublish(".")
		if err != nil {
			return err
		}
		logger.Info("📝 Default publish config written.", "path", path)
	} else {
		logger.Info("Publish config already present.")
	}

	if _, err := os.Stat(config.ManifestFile); errors.Is(err, os.ErrNotExist) {
		path, err := config.WriteDefaultManifest(".")
		if err != nil {
			return err
		}
		logger.Info("📝 Default manifest written.", "path", path)
	} else {
		logger.Info("Manifest already present.")
	}
	return nil
}
