package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	eventbus "github.com/projgraph/projgraph/internal/eventbus"
	events "github.com/projgraph/projgraph/internal/events"
	language "github.com/projgraph/projgraph/internal/language"
	projection "github.com/projgraph/projgraph/internal/projection"
	registry "github.com/projgraph/projgraph/internal/registry"
	reqid "github.com/projgraph/projgraph/internal/reqid"
	schema "github.com/projgraph/projgraph/internal/schema"
)

// Handler is an http.Handler that compiles incoming query documents into
// projections and returns them as JSON. It executes nothing: the endpoint
// exists to inspect what the compiler would hand to the data layer.
type Handler struct {
	parser *projection.Parser
	schema *schema.Schema
	opt    Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// Strict makes unresolved fragments and variables fail a request
	// instead of degrading to a best-effort projection.
	Strict bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithStrict() Option                 { return func(o *Options) { o.Strict = true } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a projection HTTP handler. sch may be nil, in which case
// parsing is schema-unaware (no registry filtering, no root type context).
func New(sch *schema.Schema, opts ...Option) (*Handler, error) {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	var popts []projection.Option
	if sch != nil {
		popts = append(popts, projection.WithRegistry(registry.New(sch)))
	}
	if op.Strict {
		popts = append(popts, projection.WithStrict())
	}
	return &Handler{parser: projection.NewParser(popts...), schema: sch, opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse(nil, &language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(nil, berr), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if batch != nil {
		out := make([]any, len(batch))
		for i := range batch {
			out[i] = h.compileOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	writeJSON(w, status, h.compileOne(ctx, req), h.opt.Pretty)
}

// compileOne compiles every root field of the requested operation.
func (h *Handler) compileOne(ctx context.Context, req ProjectionRequest) any {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		if ge, ok := err.(*language.Error); ok {
			return errorResponse(nil, ge)
		}
		return errorResponse(nil, &language.Error{Message: err.Error()})
	}

	opDef := doc.Operations.ForName(req.OperationName)
	if opDef == nil && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	if opDef == nil {
		return errorResponse(nil, &language.Error{Message: "operation not found"})
	}

	rootType := h.rootType(opDef.Operation)
	data := make(map[string]any)
	var errs []gqlError
	for _, sel := range opDef.SelectionSet {
		field, ok := sel.(*language.Field)
		if !ok {
			continue
		}
		key := field.Alias
		if key == "" {
			key = field.Name
		}
		out, cerr := h.compileField(ctx, req, doc, field, rootType)
		if cerr != nil {
			errs = append(errs, gqlError{Message: cerr.Error(), Path: []any{key}})
			data[key] = nil
			continue
		}
		data[key] = out
	}
	return gqlResult{Data: data, Errors: errs}
}

func (h *Handler) compileField(ctx context.Context, req ProjectionRequest, doc *language.QueryDocument, field *language.Field, rootType *schema.Type) (map[string]any, error) {
	aggregate := isAggregateRoot(field.Name)
	typeName := ""
	if !aggregate && rootType != nil {
		if fd := rootType.Field(field.Name); fd != nil {
			typeName = fd.Type.GetNamedType()
		}
	}

	start := time.Now()
	eventbus.Publish(ctx, events.ProjectionStart{
		Query:         req.Query,
		OperationName: req.OperationName,
		FieldName:     field.Name,
		TypeName:      typeName,
		Aggregate:     aggregate,
	})
	var out map[string]any
	var err error
	if aggregate {
		out, err = h.parser.Aggregate(field.SelectionSet, doc.Fragments, req.Variables)
	} else {
		out, err = h.parser.Field(field, doc.Fragments, req.Variables, typeName)
	}
	eventbus.Publish(ctx, events.ProjectionFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		FieldName:     field.Name,
		TypeName:      typeName,
		Aggregate:     aggregate,
		Err:           err,
		Duration:      time.Since(start),
	})
	return out, err
}

func (h *Handler) rootType(op language.Operation) *schema.Type {
	if h.schema == nil {
		return nil
	}
	switch op {
	case language.Mutation:
		return h.schema.GetMutationType()
	default:
		return h.schema.GetQueryType()
	}
}

// isAggregateRoot reports whether a root field goes through the aggregate
// extractor rather than the selection parser.
func isAggregateRoot(name string) bool {
	return strings.HasPrefix(name, "aggregate") || strings.HasPrefix(name, "groupBy")
}

// ------------------ Request parsing ------------------

type ProjectionRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (ProjectionRequest, []ProjectionRequest, *language.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return ProjectionRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return ProjectionRequest{}, nil, &language.Error{Message: "invalid 'variables' JSON"}
			}
		}
		op := r.URL.Query().Get("operationName")
		return ProjectionRequest{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct == "" || ct == "application/json" || strings.HasPrefix(ct, "application/json;") {
		reader := io.Reader(r.Body)
		if maxBody > 0 {
			reader = io.LimitReader(r.Body, maxBody+1)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			return ProjectionRequest{}, nil, &language.Error{Message: "failed to read body"}
		}
		defer r.Body.Close()
		if maxBody > 0 && int64(len(body)) > maxBody {
			return ProjectionRequest{}, nil, &language.Error{Message: errBodyTooLargeMessage}
		}

		// Try array (batch)
		if len(body) > 0 && body[0] == '[' {
			var arr []ProjectionRequest
			if err := json.Unmarshal(body, &arr); err != nil {
				return ProjectionRequest{}, nil, &language.Error{Message: "invalid JSON"}
			}
			if len(arr) == 0 {
				return ProjectionRequest{}, nil, &language.Error{Message: "empty batch"}
			}
			return ProjectionRequest{}, arr, nil
		}
		// Single
		var req ProjectionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return ProjectionRequest{}, nil, &language.Error{Message: "invalid JSON"}
		}
		if req.Query == "" {
			return ProjectionRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		if req.Variables == nil {
			req.Variables = map[string]any{}
		}
		return req, nil, nil
	}

	return ProjectionRequest{}, nil, &language.Error{Message: "unsupported Content-Type"}
}

// ------------------ Response formatting ------------------

type gqlError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type gqlResult struct {
	Data   any         `json:"data"`
	Errors []gqlError `json:"errors,omitempty"`
}

func errorResponse(data any, err *language.Error) gqlResult {
	ge := gqlError{Message: err.Message}
	return gqlResult{Data: data, Errors: []gqlError{ge}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	wildcard := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			allowed = true
			wildcard = true
		} else if o == origin {
			allowed = true
		}
	}
	if !allowed {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}
