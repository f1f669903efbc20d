package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/vegasq/docsql/internal/config"
	"github.com/vegasq/docsql/output"
	"github.com/vegasq/docsql/query"
	"github.com/vegasq/docsql/reader"
)

const defaultQuery = "SELECT * FROM $r"

// flags holds the raw command-line values
type flags struct {
	query       string
	format      string
	limit       int
	locale      string
	schema      bool
	configPath  string
	logLevel    string
	inputFormat string
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "docsql [flags] <file|glob|->",
		Short: "Query JSON, JSON Lines and Parquet documents with SQL",
		Long: `docsql runs SQL-like queries against JSON documents.

The input is a file, a quoted glob pattern or "-" for standard input.
Without -q the whole document is printed.`,
		Example: `  docsql people.json
  docsql -q "SELECT name, age FROM $r WHERE age > 30" people.json
  docsql -f csv -q "SELECT city, COUNT(*) AS n FROM $r GROUP BY city" 'data/*.jsonl.zst'
  docsql --schema events.parquet
  cat people.json | docsql -q "SELECT UPPER(name, 'tr-TR') AS name FROM $r" -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			logger := newLogger(stderr, cfg.LogLevel)

			if f.schema {
				if f.query != "" {
					return fmt.Errorf("--schema and -q cannot be used together")
				}
				return runSchema(args[0], f.inputFormat, stdin, stdout, stderr, cfg)
			}
			return runQuery(args[0], f, stdin, stdout, cfg, logger)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.query, "query", "q", "", `SQL query, e.g. "SELECT * FROM $r WHERE age > 30"`)
	fl.StringVarP(&f.format, "format", "f", "json", "Output format: "+strings.Join(output.Formats, ", "))
	fl.IntVar(&f.limit, "limit", 0, "Limit number of result rows (0 = unlimited)")
	fl.StringVar(&f.locale, "locale", "", "Default locale for UPPER and LOWER, e.g. tr-TR")
	fl.BoolVar(&f.schema, "schema", false, "Show schema information instead of data")
	fl.StringVar(&f.configPath, "config", "", "Config file (yaml, json or toml)")
	fl.StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn, error, none")
	fl.StringVar(&f.inputFormat, "input-format", "json", "Format of standard input: json, jsonl, parquet")

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// resolveConfig loads the config file and environment, then applies the
// flags the user set explicitly.
func resolveConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	fl := cmd.Flags()
	if fl.Changed("format") {
		cfg.Format = f.format
	}
	if fl.Changed("limit") {
		cfg.Limit = f.limit
	}
	if fl.Changed("locale") {
		cfg.Locale = f.locale
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		opt = level.AllowWarn()
	}
	return level.NewFilter(logger, opt)
}

// loadDocument reads a file, a glob pattern or standard input ("-")
func loadDocument(source, inputFormat string, stdin io.Reader) (any, error) {
	if source != "-" {
		return reader.ReadMultipleFiles(source)
	}
	format, err := reader.ParseFormat(inputFormat)
	if err != nil {
		return nil, err
	}
	return reader.ReadDocument(stdin, format)
}

func runQuery(source string, f flags, stdin io.Reader, stdout io.Writer, cfg config.Config, logger log.Logger) error {
	formatter, err := output.NewFormatter(cfg.Format, stdout)
	if err != nil {
		return err
	}
	locale, err := cfg.LocaleTag()
	if err != nil {
		return err
	}

	engine, err := query.New(
		query.WithLocale(locale),
		query.WithLogger(logger),
		query.WithCacheSize(cfg.CacheSize),
	)
	if err != nil {
		return err
	}

	sql := f.query
	if sql == "" {
		sql = defaultQuery
	}
	q, err := engine.Parse(sql)
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	doc, err := loadDocument(source, f.inputFormat, stdin)
	if err != nil {
		return err
	}
	level.Debug(logger).Log("msg", "document loaded", "source", source)

	result, err := engine.Execute(q, doc)
	if err != nil {
		return err
	}
	if cfg.Limit > 0 && len(result) > cfg.Limit {
		result = result[:cfg.Limit]
	}
	return formatter.Format(output.Objects(result))
}

// runSchema prints schema information. For glob patterns the first match is used.
func runSchema(source, inputFormat string, stdin io.Reader, stdout, stderr io.Writer, cfg config.Config) error {
	formatter, err := output.NewFormatter(cfg.Format, stdout)
	if err != nil {
		return err
	}

	var infos []reader.SchemaInfo
	switch {
	case source == "-":
		doc, err := loadDocument(source, inputFormat, stdin)
		if err != nil {
			return err
		}
		if infos, err = reader.InferSchema(doc); err != nil {
			return err
		}
	default:
		path := source
		if reader.IsGlob(source) {
			matches, err := reader.ExpandGlob(source)
			if err != nil {
				return err
			}
			path = matches[0]
			if len(matches) > 1 {
				fmt.Fprintf(stderr, "# Showing schema from: %s (%d files matched)\n", path, len(matches))
			}
		}
		if infos, err = reader.ExtractSchemaInfo(path); err != nil {
			return err
		}
	}

	rows := make([]map[string]interface{}, len(infos))
	for i, info := range infos {
		rows[i] = info.Map()
	}
	return formatter.Format(rows)
}
