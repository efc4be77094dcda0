package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/internal/watch"
	"github.com/reoring/zskema/metrics"
	"github.com/reoring/zskema/source"
)

// NewValidateCmd builds `zskema validate`.
func NewValidateCmd(e *session) *cobra.Command {
	v := &validator{e: e}
	output := formatValue("text")

	cmd := &cobra.Command{
		Use:   "validate --schema FILE [documents...]",
		Short: "Validate JSON or YAML documents against a schema manifest",
		Args:  cobra.MinimumNArgs(1),
		Example: `  zskema validate --schema user.yaml users/*.json
  zskema validate --schema pod.yaml --select spec.containers.0 pod.yaml
  cat doc.json | zskema validate --schema user.yaml -
  zskema validate --schema user.yaml --output tree --lang ja doc.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v.output = string(output)
			v.stdin = cmd.InOrStdin()
			v.out = cmd.OutOrStdout()
			if v.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			if v.watch {
				return v.watchAndRun(cmd.Context(), args)
			}
			_, err := v.run(cmd.Context(), args)
			return err
		},
	}

	v.schema.register(cmd)
	cmd.Flags().StringVar(&v.selectPath, "select", "", "validate only the sub-document at this gjson path")
	cmd.Flags().VarP(&output, "output", "o", "output format (text, json, flatten, tree)")
	cmd.Flags().IntVarP(&v.concurrency, "concurrency", "j", e.cfg.Concurrency, "documents validated in parallel")
	cmd.Flags().BoolVarP(&v.watch, "watch", "w", false, "re-validate when the schema or a document changes")
	cmd.Flags().BoolVar(&v.decode.AllowDuplicateKeys, "allow-duplicate-keys", false, "accept repeated object keys (last wins)")
	cmd.Flags().IntVar(&v.decode.MaxDepth, "max-depth", 0, "reject documents nested deeper than this (0 = unlimited)")
	cmd.Flags().StringVar(&v.stdinFormat, "stdin-format", "json", "format of '-' input (json, yaml)")
	cmd.Flags().StringVar(&v.metricsFile, "metrics-file", e.cfg.MetricsFile, "write Prometheus metrics to this file after each run")

	return cmd
}

type validator struct {
	e           *session
	schema      schemaFlags
	selectPath  string
	output      string
	concurrency int
	watch       bool
	decode      source.Options
	stdinFormat string
	metricsFile string

	stdin io.Reader
	out   io.Writer
}

// document is one value to validate, or the reason it could not be read.
type document struct {
	name   string
	index  int
	value  any
	issues zskema.Issues
}

type issueJSON struct {
	Code    string         `json:"code"`
	Path    string         `json:"path"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

type docResult struct {
	Document string                 `json:"document"`
	Index    int                    `json:"index"`
	Valid    bool                   `json:"valid"`
	Error    string                 `json:"error,omitempty"`
	Issues   []issueJSON            `json:"issues,omitempty"`
	Flatten  *zskema.FlattenedError `json:"flatten,omitempty"`
	Tree     *zskema.ErrorTree      `json:"tree,omitempty"`

	issues zskema.Issues
}

// run validates every document once and reports the results. It returns
// ErrInvalid when any document fails.
func (v *validator) run(ctx context.Context, files []string) ([]docResult, error) {
	log := v.e.logger
	schema, err := v.schema.load(v.e, v.decode)
	if err != nil {
		return nil, err
	}

	cfg := v.e.validationConfig(filepath.Base(v.schema.path))
	decode := v.decode
	decode.Config = cfg

	var docs []document
	for _, f := range files {
		ds, err := v.load(f, decode)
		if err != nil {
			return nil, err
		}
		docs = append(docs, ds...)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewWithRegistry(reg)
	cfg.Observer = collector

	results := make([]docResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			collector.DocumentsInFlight.Inc()
			defer collector.DocumentsInFlight.Dec()
			results[i] = v.check(gctx, schema, d, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := v.render(results); err != nil {
		return results, err
	}
	if v.metricsFile != "" {
		if err := metrics.WriteTextfile(v.metricsFile, reg); err != nil {
			log.Error().Err(err).Str("file", v.metricsFile).Msg("writing metrics failed")
		}
	}
	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}
	log.Info().Int("documents", len(results)).Int("invalid", invalid).Msg("validation finished")
	if invalid > 0 {
		return results, ErrInvalid
	}
	return results, nil
}

func (v *validator) load(name string, opt source.Options) ([]document, error) {
	var (
		r      io.Reader
		format source.Format
	)
	if name == "-" {
		r, format, name = v.stdin, source.Format(v.stdinFormat), "<stdin>"
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		defer f.Close()
		r, format = f, source.FormatOf(name)
	}
	docs, err := source.Decode(r, format, opt)
	if iss, ok := zskema.AsIssues(err); ok {
		// Issues from decoding (duplicate keys, syntax) are reported like
		// validation issues for the whole stream.
		return []document{{name: name, issues: iss}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out := make([]document, 0, len(docs))
	for _, d := range docs {
		out = append(out, document{name: name, index: d.Index, value: d.Value})
	}
	return out, nil
}

func (v *validator) check(ctx context.Context, schema dsl.Schema, d document, cfg zskema.Config) docResult {
	res := docResult{Document: d.name, Index: d.index}
	if len(d.issues) > 0 {
		res.issues = d.issues
		return v.finish(res)
	}
	value := d.value
	var base zskema.Path
	if v.selectPath != "" {
		b, err := json.Marshal(value)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		if value, err = source.Select(b, v.selectPath); err != nil {
			res.Error = err.Error()
			return res
		}
		base = source.SelectPath(v.selectPath)
	}
	out := dsl.Validate(ctx, schema, value, dsl.WithConfig(cfg), dsl.WithBasePath(base))
	res.issues = out.Issues
	return v.finish(res)
}

func (v *validator) finish(res docResult) docResult {
	res.Valid = len(res.issues) == 0
	if res.Valid {
		return res
	}
	switch v.output {
	case "flatten":
		f := zskema.Flatten(res.issues)
		res.Flatten = &f
	case "tree":
		res.Tree = zskema.Treeify(res.issues)
	default:
		for _, it := range res.issues {
			res.Issues = append(res.Issues, issueJSON{Code: it.Code, Path: it.Path.Pointer(), Message: it.Message, Params: it.Params})
		}
	}
	return res
}

func (v *validator) watchAndRun(ctx context.Context, files []string) error {
	var watched []string
	for _, f := range files {
		if f == "-" {
			return errors.New("--watch cannot read from stdin")
		}
		watched = append(watched, f)
	}
	watched = append(watched, v.schema.path)

	w, err := watch.New(watched, v.e.logger)
	if err != nil {
		return err
	}
	rerun := func() {
		if _, err := v.run(ctx, files); err != nil && !errors.Is(err, ErrInvalid) {
			v.e.logger.Error().Err(err).Msg("validation run failed")
		}
	}
	rerun()
	err = w.Watch(ctx, func(changed []string) {
		v.e.logger.Info().Strs("changed", changed).Msg("re-validating")
		rerun()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (v *validator) render(results []docResult) error {
	if v.output != "text" {
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(v.out, string(b))
		return err
	}
	invalid := 0
	for _, r := range results {
		name := r.Document
		if r.Index > 0 {
			name = fmt.Sprintf("%s#%d", r.Document, r.Index)
		}
		switch {
		case r.Error != "":
			invalid++
			fmt.Fprintf(v.out, "ERROR %s: %s\n", name, r.Error)
		case r.Valid:
			fmt.Fprintf(v.out, "ok    %s\n", name)
		default:
			invalid++
			fmt.Fprintf(v.out, "FAIL  %s\n", name)
			for _, it := range r.issues {
				fmt.Fprintf(v.out, "      %s: %s (%s)\n", it.Path.Pointer(), it.Message, it.Code)
			}
		}
	}
	_, err := fmt.Fprintf(v.out, "%d document(s), %d invalid\n", len(results), invalid)
	return err
}
