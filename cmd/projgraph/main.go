package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/projgraph/projgraph/internal/config"
	"github.com/projgraph/projgraph/internal/eventbus"
	language "github.com/projgraph/projgraph/internal/language"
	"github.com/projgraph/projgraph/internal/otel"
	"github.com/projgraph/projgraph/internal/projection"
	"github.com/projgraph/projgraph/internal/registry"
	"github.com/projgraph/projgraph/internal/schema"
	"github.com/projgraph/projgraph/internal/server"
)

const rootUsage = `projgraph: GraphQL selection-to-projection compiler & tools

USAGE:
  projgraph <command> [flags]

COMMANDS:
  project          Compile a query's selections into a store projection
  serve            Run the HTTP projection inspection endpoint
  help             Show help for any command
`

const projectUsage = `project FLAGS:
  -schema <file>       SDL file backing the model field registry. Repeatable;
                       omit to compile without schema-aware filtering
  -query <file>        Query document file ("-" or empty reads stdin)
  -operation <name>    Operation to compile (default: the only one)
  -variables <json>    Variables as a JSON object
  -strict              Fail on unresolved fragments or variables
  -pretty              Pretty-print JSON output
  -config <file>       YAML config file (flags override)
`

const serveUsage = `serve FLAGS:
  -schema <file>            SDL file backing the model field registry. Repeatable
  -strict                   Fail requests on unresolved fragments or variables
  -server.addr <addr>       HTTP listen address (default: :8080)
  -server.pretty            Pretty-print JSON responses
  -server.timeout <dur>     Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body-bytes N  Max request body size (default: unlimited)
  -otel.endpoint <addr>     OTLP collector endpoint
  -otel.service <name>      OpenTelemetry service name (default: projgraph)
  -config <file>            YAML config file (flags override)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("projgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "project":
		return cmdProject(cmdArgs)
	case "serve":
		return cmdServe(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "project":
		fmt.Print(projectUsage)
	case "serve":
		fmt.Print(serveUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// loadConfig reads the optional config file; a nil result means defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// buildSchema reads SDL files into a registry-backing schema; an empty file
// list yields nil (schema-unaware mode).
func buildSchema(files []string) (*schema.Schema, error) {
	if len(files) == 0 {
		return nil, nil
	}
	sources := make([]*language.Source, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		sources = append(sources, &language.Source{Name: path, Input: string(data)})
	}
	sch, err := schema.BuildFromSDL(sources...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return sch, nil
}

func cmdProject(args []string) error {
	var schemaFiles stringListFlag
	queryFile := ""
	operation := ""
	variablesJSON := ""
	strict := false
	pretty := false
	configFile := ""

	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "schema", "SDL file backing the model field registry")
	fs.StringVar(&queryFile, "query", queryFile, "Query document file")
	fs.StringVar(&operation, "operation", operation, "Operation to compile")
	fs.StringVar(&variablesJSON, "variables", variablesJSON, "Variables as a JSON object")
	fs.BoolVar(&strict, "strict", strict, "Fail on unresolved fragments or variables")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print JSON output")
	fs.StringVar(&configFile, "config", configFile, "YAML config file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, projectUsage)
		return err
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	set := flagsSet(fs)
	if !set["schema"] && len(cfg.Schema) > 0 {
		schemaFiles = append(schemaFiles, cfg.Schema...)
	}
	if !set["strict"] {
		strict = strict || cfg.Strict
	}

	querySrc, err := readQuery(queryFile)
	if err != nil {
		return err
	}
	doc, err := language.ParseQuery(querySrc)
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}
	opDef := doc.Operations.ForName(operation)
	if opDef == nil && operation == "" && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	if opDef == nil {
		return fmt.Errorf("operation %q not found", operation)
	}

	vars := map[string]any{}
	if variablesJSON != "" {
		if err := json.Unmarshal([]byte(variablesJSON), &vars); err != nil {
			return fmt.Errorf("parse variables: %w", err)
		}
	}

	sch, err := buildSchema(schemaFiles)
	if err != nil {
		return err
	}

	var popts []projection.Option
	if sch != nil {
		popts = append(popts, projection.WithRegistry(registry.New(sch)))
	}
	if strict {
		popts = append(popts, projection.WithStrict())
	}
	parser := projection.NewParser(popts...)

	rootType := rootTypeFor(sch, opDef.Operation)
	data := make(map[string]any)
	for _, sel := range opDef.SelectionSet {
		field, ok := sel.(*language.Field)
		if !ok {
			continue
		}
		key := field.Alias
		if key == "" {
			key = field.Name
		}
		out, err := compileRootField(parser, doc, field, rootType, vars)
		if err != nil {
			return fmt.Errorf("compile %s: %w", key, err)
		}
		data[key] = out
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func compileRootField(parser *projection.Parser, doc *language.QueryDocument, field *language.Field, rootType *schema.Type, vars map[string]any) (map[string]any, error) {
	name := field.Name
	if strings.HasPrefix(name, "aggregate") || strings.HasPrefix(name, "groupBy") {
		return parser.Aggregate(field.SelectionSet, doc.Fragments, vars)
	}
	typeName := ""
	if rootType != nil {
		if fd := rootType.Field(name); fd != nil {
			typeName = fd.Type.GetNamedType()
		}
	}
	return parser.Field(field, doc.Fragments, vars, typeName)
}

func rootTypeFor(sch *schema.Schema, op language.Operation) *schema.Type {
	if sch == nil {
		return nil
	}
	if op == language.Mutation {
		return sch.GetMutationType()
	}
	return sch.GetQueryType()
}

func readQuery(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read query: %w", err)
	}
	return string(data), nil
}

func flagsSet(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func cmdServe(args []string) error {
	var schemaFiles stringListFlag
	strict := false
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBodyBytes := int64(0)
	otelEndpoint := ""
	otelService := "projgraph"
	configFile := ""

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "schema", "SDL file backing the model field registry")
	fs.BoolVar(&strict, "strict", strict, "Fail requests on unresolved fragments or variables")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBodyBytes, "server.max-body-bytes", maxBodyBytes, "Max request body size")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.StringVar(&configFile, "config", configFile, "YAML config file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	set := flagsSet(fs)
	if !set["schema"] && len(cfg.Schema) > 0 {
		schemaFiles = append(schemaFiles, cfg.Schema...)
	}
	if !set["strict"] {
		strict = strict || cfg.Strict
	}
	if !set["server.addr"] && cfg.Server.Addr != "" {
		addr = cfg.Server.Addr
	}
	if !set["server.pretty"] {
		pretty = pretty || cfg.Server.Pretty
	}
	if !set["server.timeout"] && cfg.Server.Timeout != 0 {
		timeout = time.Duration(cfg.Server.Timeout)
	}
	if !set["server.max-body-bytes"] && cfg.Server.MaxBodyBytes != 0 {
		maxBodyBytes = cfg.Server.MaxBodyBytes
	}
	if !set["otel.endpoint"] && cfg.Otel.Endpoint != "" {
		otelEndpoint = cfg.Otel.Endpoint
	}
	if !set["otel.service"] && cfg.Otel.Service != "" {
		otelService = cfg.Otel.Service
	}

	sch, err := buildSchema(schemaFiles)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if maxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(maxBodyBytes))
	}
	if strict {
		sopts = append(sopts, server.WithStrict())
	}
	h, err := server.New(sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/project", h)

	log.Printf("projection server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
