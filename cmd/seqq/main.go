// Command seqq evaluates a lazy query over a JSON array.
//
// The array is read from a file or stdin and streamed one element at a time.
// Steps and the terminal come from the config file's query section; flags
// override the input and terminal.
//
//	seqq -c query.yml -i events.json
//	seqq -t count < events.json
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"

	"github.com/kbukum/lazyseq/bootstrap"
	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/query"
	"github.com/kbukum/lazyseq/version"
)

const serviceName = "seqq"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configFile string
	input      string
	terminal   string
	index      int
	field      string
	schema     bool
	version    bool
}

// run is main without the process exit. It returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVarP(&o.configFile, "config", "c", "", "config file (default: seqq.yml, config.yml, ...)")
	fs.StringVarP(&o.input, "input", "i", "", "JSON array file, - for stdin")
	fs.StringVarP(&o.terminal, "terminal", "t", "", "terminal operator (to_array, count, sum, average, min, max, first, last, single, element_at)")
	fs.IntVar(&o.index, "index", 0, "index for element_at")
	fs.StringVarP(&o.field, "field", "f", "", "selector or predicate path for the terminal")
	fs.BoolVar(&o.schema, "schema", false, "print the config document JSON schema and exit")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	switch {
	case o.version:
		fmt.Fprintln(stdout, version.Get().String())
		return 0
	case o.schema:
		if err := writeSchema(stdout); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
			return 1
		}
		return 0
	}

	cfg, err := loadConfig(fs, o, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return 1
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return 1
	}

	err = app.RunTask(ctx, func(ctx context.Context) error {
		return evaluate(ctx, cfg.Query, stdin, stdout)
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return 1
	}
	return 0
}

// loadConfig reads the config document and applies flag overrides. Logs go
// to stderr so stdout carries only the result.
func loadConfig(fs *pflag.FlagSet, o options, stderr io.Writer) (*Config, error) {
	opts := []config.LoaderOption{
		config.WithEnvPrefix("SEQQ"),
		config.WithDefault("name", serviceName),
		config.WithDefault("version", version.Get().Version),
	}
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}

	if fs.Changed("input") {
		cfg.Query.Input = o.input
	}
	if fs.Changed("terminal") {
		cfg.Query.Terminal = o.terminal
	}
	if fs.Changed("index") {
		cfg.Query.Index = o.index
	}
	if fs.Changed("field") {
		cfg.Query.Field = o.field
	}
	cfg.Logging.Writer = stderr
	return cfg, nil
}

// evaluate streams the input through the configured steps and writes the
// terminal's result as JSON.
func evaluate(ctx context.Context, qc QueryConfig, stdin io.Reader, stdout io.Writer) error {
	in, err := openInput(qc.Input, stdin)
	if err != nil {
		return err
	}
	src := newArrayReader(in)
	defer src.Close()

	d := query.Defer(src)
	if err := applySteps(d, qc.Steps); err != nil {
		return err
	}

	result, err := runTerminal(ctx, d, qc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if qc.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

func openInput(path string, stdin io.Reader) (io.Reader, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// writeSchema prints the JSON schema of the config document, keyed by the
// YAML field names used in config files.
func writeSchema(w io.Writer) error {
	r := &jsonschema.Reflector{FieldNameTag: "yaml", ExpandedStruct: true}
	s := r.Reflect(&Config{})
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
