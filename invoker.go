package ideas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// Backend performs one generateContent call against one model.
type Backend interface {
	GenerateContent(ctx context.Context, model Model, contents []*genai.Content) (*genai.GenerateContentResponse, error)
}

// GenaiBackend implements Backend with the Google GenAI client.
type GenaiBackend struct {
	client *genai.Client
}

// NewGenaiBackend creates a Gemini API backend. httpClient carries the
// uniform request timeout; baseURL may be empty for the public endpoint.
// The client is copied, never modified.
func NewGenaiBackend(ctx context.Context, apiKey string, httpClient *http.Client, baseURL string) (*GenaiBackend, error) {
	hc := &http.Client{}
	if httpClient != nil {
		*hc = *httpClient
	}
	hc.Transport = &errorEnvelopeTransport{base: hc.Transport}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendGeminiAPI,
		APIKey:      apiKey,
		HTTPClient:  hc,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenaiBackend{client: client}, nil
}

func (b *GenaiBackend) GenerateContent(ctx context.Context, model Model, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	return b.client.Models.GenerateContent(ctx, string(model), contents, nil)
}

// errorEnvelopeTransport normalises non-2xx bodies into the
// {"error":{...}} shape the genai client decodes, with the code always set to
// the HTTP status. genai dereferences a missing "error" key, so bodies such
// as null or {"message":"x"} must never reach it unchanged.
type errorEnvelopeTransport struct {
	base http.RoundTripper
}

func (t *errorEnvelopeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return resp, err
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	envelope, err := json.Marshal(map[string]genai.APIError{"error": apiErrorFromBody(resp.StatusCode, raw)})
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(envelope))
	resp.ContentLength = int64(len(envelope))
	resp.Header.Set("Content-Length", strconv.Itoa(len(envelope)))
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

// apiErrorFromBody keeps the server's message and status when the body is a
// well-formed error envelope and falls back to the raw body otherwise.
func apiErrorFromBody(code int, raw []byte) genai.APIError {
	apiErr := genai.APIError{Code: code, Status: http.StatusText(code)}

	var env struct {
		Error *genai.APIError `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error != nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
		if env.Error.Status != "" {
			apiErr.Status = env.Error.Status
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}

// outcomeKind tags the result of a single model attempt.
type outcomeKind int

const (
	outcomeSuccess   outcomeKind = iota
	outcomeTransient             // advance to the next model
	outcomeFatal                 // abort the whole invocation
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeSuccess:
		return "success"
	case outcomeTransient:
		return "transient"
	default:
		return "fatal"
	}
}

type outcome struct {
	kind outcomeKind
	text string
	err  error
}

// FallbackInvoker tries an ordered list of models, one attempt each, and
// returns the first extracted text.
type FallbackInvoker struct {
	backend Backend
	models  []Model
	log     *slog.Logger
	metrics *Metrics
}

// NewFallbackInvoker builds an invoker over models. An empty list uses
// DefaultModels; a nil log uses slog.Default().
func NewFallbackInvoker(backend Backend, models []Model, log *slog.Logger) *FallbackInvoker {
	if len(models) == 0 {
		models = DefaultModels
	}
	if log == nil {
		log = slog.Default()
	}
	return &FallbackInvoker{
		backend: backend,
		models:  append([]Model(nil), models...),
		log:     log,
	}
}

// SetMetrics records attempt outcomes into m.
func (f *FallbackInvoker) SetMetrics(m *Metrics) { f.metrics = m }

// Models returns the fallback chain in order.
func (f *FallbackInvoker) Models() []Model { return append([]Model(nil), f.models...) }

// Ensure FallbackInvoker implements Invoker
var _ Invoker = (*FallbackInvoker)(nil)

// Generate sends prompt down the fallback chain. The request payload is
// built once and reused for every model.
func (f *FallbackInvoker) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	for i, model := range f.models {
		last := i == len(f.models)-1
		f.log.Info("Attempting model", "model", model, "attempt", i+1, "of", len(f.models))

		resp, err := f.backend.GenerateContent(ctx, model, contents)
		out := classify(model, last, resp, err)
		f.metrics.modelAttempt(model, out.kind)

		switch out.kind {
		case outcomeSuccess:
			f.log.Info("Model responded", "model", model, "response_length", len(out.text))
			return out.text, nil
		case outcomeFatal:
			f.log.Warn("Model invocation failed", "model", model, "error", out.err)
			return "", out.err
		default:
			f.log.Warn("Model unavailable, trying next", "model", model, "error", out.err)
		}
	}

	return "", fmt.Errorf("%w: all models are currently unavailable", ErrExternalService)
}

// classify maps one attempt onto an outcome:
//
//	transport failure or timeout     → transient
//	429/503, models remain           → transient
//	other non-success, models remain → transient
//	non-success on the last model    → fatal, carrying status and body
//	success without text             → fatal
func classify(model Model, last bool, resp *genai.GenerateContentResponse, err error) outcome {
	if err != nil {
		if isTransportError(err) {
			return outcome{kind: outcomeTransient, err: fmt.Errorf("request failed for %s: %w", model, err)}
		}

		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			if (apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusServiceUnavailable) && !last {
				return outcome{kind: outcomeTransient, err: fmt.Errorf("%s is overloaded or rate-limited (%d)", model, apiErr.Code)}
			}
			if !last {
				return outcome{kind: outcomeTransient, err: fmt.Errorf("API error (%d): %s", apiErr.Code, apiErr.Message)}
			}
			return outcome{kind: outcomeFatal, err: fmt.Errorf("%w: all models failed. Last error %d: %s",
				ErrExternalService, apiErr.Code, apiErr.Message)}
		}

		return outcome{kind: outcomeFatal, err: fmt.Errorf("%w: failed to parse Gemini response: %v", ErrExternalService, err)}
	}

	text, ok := extractText(resp)
	if !ok {
		return outcome{kind: outcomeFatal, err: fmt.Errorf("%w: failed to extract text from Gemini response", ErrExternalService)}
	}
	return outcome{kind: outcomeSuccess, text: text}
}

// isTransportError reports failures of the connection itself, including a
// timeout that fires while a success body is still being read.
func isTransportError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// extractText reads candidates[0].content.parts[0].text, checking every step.
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", false
	}
	part := candidate.Content.Parts[0]
	if part == nil || part.Text == "" {
		return "", false
	}
	return part.Text, true
}
