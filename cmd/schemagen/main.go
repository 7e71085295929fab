// Command schemagen generates TypeScript and C# sources from a directory of
// JSON Schema files, or from a single remote schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
	"golang.org/x/term"

	schemagen "github.com/goliatone/go-schemagen"
	"github.com/goliatone/go-schemagen/pkg/batch"
	"github.com/goliatone/go-schemagen/pkg/codegen/csharp"
	"github.com/goliatone/go-schemagen/pkg/codegen/typescript"
	"github.com/goliatone/go-schemagen/pkg/config"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
)

const (
	exitOK         = 0
	exitUsage      = 1
	exitAborted    = 2
	exitRuntimeErr = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		files:       afero.NewOsFs(),
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	os.Exit(c.run(ctx, os.Args[1:]))
}

type cli struct {
	stdout      io.Writer
	stderr      io.Writer
	files       afero.Fs
	interactive bool
	// prompter overrides the terminal prompter.
	prompter batch.Prompter
}

type flags struct {
	remote     string
	namespace  string
	schemaDir  string
	typescript string
	csharp     string
	onError    string
	configPath string
	timeout    time.Duration
	logLevel   string
	exclude    []string
	noValidate bool
}

// newApp builds the command line. terminate replaces os.Exit after --help so run
// can return its own exit code.
func newApp(out io.Writer, f *flags, terminate func(int)) *kingpin.Application {
	app := kingpin.New("schemagen", "Generate TypeScript and C# sources from JSON Schema files.")
	app.UsageWriter(out)
	app.ErrorWriter(out)
	app.Terminate(terminate)

	app.Flag("remote", "JSON schema source http address.").Short('r').Envar("SCHEMAGEN_REMOTE").StringVar(&f.remote)
	app.Flag("namespace", "Namespace of generated code (default Root).").Short('n').Envar("SCHEMAGEN_NAMESPACE").StringVar(&f.namespace)
	app.Flag("schema", "JSON schema source directory.").Short('s').Envar("SCHEMAGEN_SCHEMA").StringVar(&f.schemaDir)
	app.Flag("typescript", "TypeScript target directory.").Short('t').Envar("SCHEMAGEN_TYPESCRIPT").StringVar(&f.typescript)
	app.Flag("csharp", "C# target directory.").Short('c').Envar("SCHEMAGEN_CSHARP").StringVar(&f.csharp)
	app.Flag("on-error", "What to do when a schema fails: prompt, stop or skip (default prompt on a terminal, else stop).").
		Envar("SCHEMAGEN_ON_ERROR").EnumVar(&f.onError, batch.OnErrorValues...)
	app.Flag("config", "YAML configuration file.").Envar("SCHEMAGEN_CONFIG").StringVar(&f.configPath)
	app.Flag("timeout", "Remote fetch timeout (default 30s).").Envar("SCHEMAGEN_TIMEOUT").DurationVar(&f.timeout)
	app.Flag("log-level", "Log level: debug, info, warn or error.").Default("info").Envar("SCHEMAGEN_LOG_LEVEL").
		EnumVar(&f.logLevel, "debug", "info", "warn", "error")
	app.Flag("exclude", "Glob of schema files to skip, relative to the schema root. Repeatable.").StringsVar(&f.exclude)
	app.Flag("no-validate", "Skip meta-schema validation of JSON Schema documents.").BoolVar(&f.noValidate)
	return app
}

func (c *cli) run(ctx context.Context, args []string) int {
	var f flags
	terminated := false
	app := newApp(c.stderr, &f, func(int) { terminated = true })
	_, err := app.Parse(args)
	if terminated {
		return exitOK
	}
	if err != nil {
		c.fail("parsing arguments: %v", err)
		app.Usage(args)
		return exitUsage
	}

	if f.typescript == "" && f.csharp == "" {
		c.fail("TypeScript and/or C# target directory missing")
		app.Usage(args)
		return exitUsage
	}
	if f.schemaDir == "" && f.remote == "" {
		c.fail("Either Source Url or Source Directory must be provided")
		app.Usage(args)
		return exitUsage
	}
	if f.remote == "" {
		if ok, err := afero.DirExists(c.files, f.schemaDir); err != nil || !ok {
			c.fail("Schema directory %s does not exist", f.schemaDir)
			app.Usage(args)
			return exitUsage
		}
	}

	cfg := config.Config{}
	if f.configPath != "" {
		loaded, err := config.Load(c.files, f.configPath)
		if err != nil {
			c.fail("%v", err)
			return exitUsage
		}
		cfg = loaded
	}

	policy, err := c.onErrorPolicy(f.onError, cfg.OnError)
	if err != nil {
		c.fail("%v", err)
		return exitUsage
	}

	logger := newLogger(c.stderr, f.logLevel)
	driver, req, err := c.build(f, cfg, policy, logger)
	if err != nil {
		c.fail("%v", err)
		return exitUsage
	}

	report, err := driver.Run(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, batch.ErrAborted), errors.Is(err, context.Canceled):
		c.fail("aborted: %v", err)
		return exitAborted
	default:
		c.fail("%v", err)
		return exitRuntimeErr
	}

	level.Debug(logger).Log("msg", "summary", "generated", report.Generated(), "skipped", report.Skipped(), "written", len(report.Written()))
	color.New(color.FgGreen).Fprintln(c.stdout, "Done!")
	return exitOK
}

func (c *cli) build(f flags, cfg config.Config, policy batch.OnError, logger log.Logger) (*batch.Driver, batch.Request, error) {
	timeout := firstDuration(f.timeout, cfg.Timeout, batch.DefaultFetchTimeout)

	loader := schemagen.NewLoader(
		jsonschema.WithFiles(c.files),
		jsonschema.WithHTTPFallback(timeout),
	)
	validate := !f.noValidate
	if !f.noValidate && cfg.Validate != nil {
		validate = *cfg.Validate
	}
	parser := schemagen.NewParser(loader,
		jsonschema.WithValidation(validate),
		jsonschema.WithLogger(logger),
	)

	registry, err := schemagen.NewGeneratorRegistry()
	if err != nil {
		return nil, batch.Request{}, err
	}

	req := batch.Request{
		SchemaDir: f.schemaDir,
		RemoteURL: f.remote,
		Namespace: firstString(f.namespace, cfg.Namespace, batch.DefaultNamespace),
	}
	for _, target := range []struct{ name, dir string }{
		{typescript.Name, f.typescript},
		{csharp.Name, f.csharp},
	} {
		if target.dir == "" {
			continue
		}
		generator, err := registry.Get(target.name)
		if err != nil {
			return nil, batch.Request{}, err
		}
		req.Targets = append(req.Targets, batch.Target{Generator: generator, Dir: target.dir})
	}

	options := []batch.Option{
		batch.WithFs(c.files),
		batch.WithLoader(loader),
		batch.WithParser(parser),
		batch.WithLogger(logger),
		batch.WithOnError(policy),
		batch.WithExclude(append(append([]string(nil), cfg.Exclude...), f.exclude...)...),
		batch.WithNaming(cfg.Policies()),
		batch.WithFetchTimeout(timeout),
	}
	if policy == batch.OnErrorPrompt {
		prompter := c.prompter
		if prompter == nil {
			prompter = batch.NewSurveyPrompter()
		}
		options = append(options, batch.WithPrompter(prompter))
	}

	driver, err := schemagen.NewDriver(options...)
	if err != nil {
		return nil, batch.Request{}, err
	}
	return driver, req, nil
}

// onErrorPolicy resolves the failure policy: flag, then config, then prompt
// when attached to a terminal and stop otherwise.
func (c *cli) onErrorPolicy(flag string, configured batch.OnError) (batch.OnError, error) {
	fallback := batch.OnErrorStop
	if c.interactive {
		fallback = batch.OnErrorPrompt
	}
	if configured != "" {
		fallback = configured
	}
	return batch.ParseOnError(flag, fallback)
}

func (c *cli) fail(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	color.New(color.FgRed).Fprintln(c.stderr, msg)
}

func newLogger(w io.Writer, name string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var option level.Option
	switch name {
	case "debug":
		option = level.AllowDebug()
	case "warn":
		option = level.AllowWarn()
	case "error":
		option = level.AllowError()
	default:
		option = level.AllowInfo()
	}
	return level.NewFilter(logger, option)
}

func firstString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func firstDuration(values ...time.Duration) time.Duration {
	for _, value := range values {
		if value > 0 {
			return value
		}
	}
	return 0
}
