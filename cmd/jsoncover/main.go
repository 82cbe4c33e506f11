package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	jsoncover "github.com/ShubhamK2003/JSONCover"
	"github.com/ShubhamK2003/JSONCover/coverage"
	"github.com/ShubhamK2003/JSONCover/format"
	"github.com/ShubhamK2003/JSONCover/i18n"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "validate":
		return checkCmd(ctx, "validate", args[1:], stdout, stderr)
	case "cover":
		return checkCmd(ctx, "cover", args[1:], stdout, stderr)
	case "formats":
		for _, n := range format.Names() {
			fmt.Fprintln(stdout, n)
		}
		return exitOK
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "jsoncover CLI\n\nUsage:\n  jsoncover validate -schema schema.json [-select path] [-format text|json] data...\n  jsoncover cover -schema schema.json [-jsonl] [-format text|json] data...\n  jsoncover formats")
}

type config struct {
	schema  string
	sel     string
	format  string
	lang    string
	verbose bool
	workers int
	jsonl   bool
}

// payload is one instance to check, named for the report.
type payload struct {
	name string
	data []byte
}

// result is the outcome for one payload. err is set when the payload could
// not be read or parsed.
type result struct {
	name     string
	output   jsoncover.BasicOutput
	coverage *coverage.Report
	err      error
}

func checkCmd(ctx context.Context, name string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cfg config
	fs.StringVar(&cfg.schema, "schema", "", "schema file path or URI")
	fs.StringVar(&cfg.sel, "select", "", "gjson path selecting the instance inside each payload")
	fs.StringVar(&cfg.format, "format", "text", "output format: text or json")
	fs.StringVar(&cfg.lang, "lang", "en", "message language: en or ja")
	fs.BoolVar(&cfg.verbose, "v", false, "enable debug logs")
	fs.IntVar(&cfg.workers, "workers", runtime.GOMAXPROCS(0), "payloads checked in parallel")
	if name == "cover" {
		fs.BoolVar(&cfg.jsonl, "jsonl", false, "treat each line of the data file as one payload")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if cfg.schema == "" || fs.NArg() == 0 || (cfg.format != "text" && cfg.format != "json") {
		fs.Usage()
		return exitUsage
	}
	if cfg.jsonl && fs.NArg() != 1 {
		fmt.Fprintln(stderr, "cover: -jsonl takes exactly one data file")
		return exitUsage
	}

	i18n.SetLanguage(cfg.lang)
	logger := slog.New(slog.DiscardHandler)
	if cfg.verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	schema, err := loadSchema(ctx, cfg.schema, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return exitUsage
	}
	payloads, err := readPayloads(fs.Args(), cfg.jsonl)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return exitUsage
	}

	results := make([]result, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.workers, 1))
	for i, p := range payloads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = check(gctx, schema, p, cfg, name == "cover")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return exitUsage
	}

	code := exitOK
	for _, r := range results {
		switch {
		case r.err != nil:
			code = exitUsage
		case !r.output.Valid && code == exitOK:
			code = exitInvalid
		}
		if err := report(stdout, r, cfg.format); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return exitUsage
		}
	}
	return code
}

func loadSchema(ctx context.Context, ref string, logger *slog.Logger) (*jsoncover.Schema, error) {
	uri := ref
	if !strings.Contains(ref, "://") {
		u, err := jsoncover.FileURI(ref)
		if err != nil {
			return nil, err
		}
		uri = u
	}
	return jsoncover.NewCompiler(jsoncover.Options{Logger: logger}).Compile(ctx, uri)
}

func readPayloads(files []string, jsonl bool) ([]payload, error) {
	var out []payload
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		if !jsonl {
			out = append(out, payload{name: f, data: data})
			continue
		}
		n := 0
		gjson.ForEachLine(string(data), func(line gjson.Result) bool {
			n++
			out = append(out, payload{name: fmt.Sprintf("%s:%d", f, n), data: []byte(line.Raw)})
			return true
		})
	}
	return out, nil
}

func check(ctx context.Context, s *jsoncover.Schema, p payload, cfg config, withCoverage bool) result {
	r := result{name: p.name}
	inst, err := instance(p, cfg.sel)
	if err != nil {
		r.err = err
		return r
	}
	if !withCoverage {
		r.output = s.Validate(ctx, inst)
		return r
	}
	res := s.Cover(ctx, inst)
	r.output, r.coverage = res.Output, &res.Coverage
	return r
}

// instance parses a payload and applies the -select path.
func instance(p payload, sel string) (any, error) {
	v, err := jsoncover.ParseDocument(p.data, p.name, jsoncover.ParseOpt{})
	if err != nil || sel == "" {
		return v, err
	}
	raw, err := jsonvalue.Marshal(v)
	if err != nil {
		return nil, err
	}
	picked := gjson.GetBytes(raw, sel)
	if !picked.Exists() {
		return nil, fmt.Errorf("select %q matched nothing", sel)
	}
	return jsoncover.ParseJSON([]byte(picked.Raw), jsoncover.ParseOpt{})
}

type jsonLine struct {
	File     string                `json:"file"`
	Error    string                `json:"error,omitempty"`
	Output   *jsoncover.BasicOutput `json:"output,omitempty"`
	Coverage *coverage.Report      `json:"coverage,omitempty"`
}

func report(w io.Writer, r result, outFormat string) error {
	if outFormat == "json" {
		line := jsonLine{File: r.name, Coverage: r.coverage}
		if r.err != nil {
			line.Error = r.err.Error()
		} else {
			line.Output = &r.output
		}
		b, err := gojson.Marshal(line)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	switch {
	case r.err != nil:
		fmt.Fprintf(w, "%s: error: %v\n", r.name, r.err)
		return nil
	case r.output.Valid:
		fmt.Fprintf(w, "%s: valid\n", r.name)
	default:
		fmt.Fprintf(w, "%s: invalid\n", r.name)
		for _, e := range r.output.Errors {
			if !e.IsSummary() {
				fmt.Fprintf(w, "  %s: %s (%s)\n", e.InstanceLocation, e.Error, e.KeywordLocation)
			}
		}
	}
	if r.coverage != nil {
		fmt.Fprintf(w, "  coverage: %s\n", r.coverage)
	}
	return nil
}
