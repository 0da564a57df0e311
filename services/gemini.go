package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

var (
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
)

type ErrorKind int

const (
	TransportError ErrorKind = iota + 1
	MalformedResponse
)

// APIError is returned by GeminiClient.Generate. Message is what the server said
// (or what the transport reported); it is empty when neither said anything usable.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Kind == MalformedResponse:
		return "API'den beklenen formatta bir yanıt alınamadı."
	case e.Message != "":
		return e.Message
	case e.Status != 0:
		return fmt.Sprintf("API Hatası: %d %s", e.Status, http.StatusText(e.Status))
	default:
		return "Bir hata oluştu. Lütfen tekrar deneyin."
	}
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == TransportError
	case ErrMalformedResponse:
		return e.Kind == MalformedResponse
	}
	return false
}

type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient's transport is wrapped, not replaced. Nil means http.DefaultTransport.
	HTTPClient *http.Client
}

// GeminiClient issues single-turn generateContent calls.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewGeminiClient(ctx context.Context, opts GeminiOptions, log *zap.Logger) (*GeminiClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	base := http.DefaultTransport
	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		*httpClient = *opts.HTTPClient
		if opts.HTTPClient.Transport != nil {
			base = opts.HTTPClient.Transport
		}
	}
	httpClient.Transport = responseShapeTransport{base: base}

	config := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if opts.BaseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, log: log}, nil
}

func (g *GeminiClient) Model() string { return g.model }

// Generate sends prompt as a single user turn and returns the first candidate's
// first text part, which may be empty. With structured set the model is asked for
// JSON output.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, structured bool) (text string, err error) {
	var config *genai.GenerateContentConfig
	if structured {
		config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.Error("gemini response could not be decoded", zap.String("model", g.model), zap.Any("panic", r))
			text, err = "", &APIError{Kind: MalformedResponse, Err: fmt.Errorf("decoding response: %v", r)}
		}
	}()

	outcome := &roundTrip{}
	resp, err := g.client.Models.GenerateContent(withRoundTrip(ctx, outcome), g.model, genai.Text(prompt), config)
	if err != nil {
		apiErr := classifyError(err, outcome.succeeded())
		g.log.Warn("gemini request failed",
			zap.String("model", g.model),
			zap.Int("status", apiErr.Status),
			zap.Error(err))
		return "", apiErr
	}

	text, ok := firstText(resp)
	if !ok {
		g.log.Warn("gemini response missing candidate text", zap.String("model", g.model))
		return "", &APIError{Kind: MalformedResponse}
	}
	return text, nil
}

// classifyError maps SDK errors onto APIError. Anything that fails after a 2xx
// body was received is a decoding problem, not a transport one.
func classifyError(err error, received bool) *APIError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Kind: TransportError, Status: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	if received {
		return &APIError{Kind: MalformedResponse, Err: err}
	}
	return &APIError{Kind: TransportError, Message: err.Error(), Err: err}
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", false
	}
	return c.Content.Parts[0].Text, true
}

type roundTripKey struct{}

// roundTrip records whether the transport handed a 2xx body to the SDK.
type roundTrip struct {
	mu       sync.Mutex
	received bool
}

func (r *roundTrip) markReceived() {
	r.mu.Lock()
	r.received = true
	r.mu.Unlock()
}

func (r *roundTrip) succeeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.received
}

func withRoundTrip(ctx context.Context, rt *roundTrip) context.Context {
	return context.WithValue(ctx, roundTripKey{}, rt)
}

// candidateBody is the part of a generateContent response the adapter reads.
// Success bodies are decoded into it and re-encoded, so the SDK only ever sees
// well-typed candidates.
type candidateBody struct {
	Candidates []*candidateShape `json:"candidates,omitempty"`
}

type candidateShape struct {
	Content *struct {
		Role  string `json:"role,omitempty"`
		Parts []*struct {
			Text string `json:"text"`
		} `json:"parts,omitempty"`
	} `json:"content,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
}

func normalizeSuccessBody(body []byte) []byte {
	var decoded candidateBody
	if json.Unmarshal(body, &decoded) != nil {
		return []byte("{}")
	}
	for _, c := range decoded.Candidates {
		if c == nil {
			return []byte("{}")
		}
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p == nil {
				return []byte("{}")
			}
		}
	}
	normalized, err := json.Marshal(decoded)
	if err != nil {
		return []byte("{}")
	}
	return normalized
}

// responseShapeTransport normalizes response bodies before the SDK decodes them.
// Error bodies are rewritten into {"error":{code,message,status}} keeping only the
// server's message, so an absent or undecodable body yields an empty message.
// Success bodies keep only their candidates; a body whose candidates are not
// well typed becomes {}, which decodes to a response with no candidates.
type responseShapeTransport struct {
	base http.RoundTripper
}

func (t responseShapeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	// streaming endpoints are left alone
	if strings.Contains(req.URL.RawQuery, "alt=sse") {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body = normalizeSuccessBody(body)
		if rt, ok := req.Context().Value(roundTripKey{}).(*roundTrip); ok {
			rt.markReceived()
		}
	} else {
		body = normalizeErrorBody(resp.StatusCode, body)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Del("Content-Length")
	return resp, nil
}

func normalizeErrorBody(status int, body []byte) []byte {
	var decoded struct {
		Error *struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	out := genai.APIError{Code: status}
	if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil {
		out.Message = decoded.Error.Message
		out.Status = decoded.Error.Status
	}
	normalized, _ := json.Marshal(map[string]genai.APIError{"error": out})
	return normalized
}

// cleanModelOutput strips markdown code fences the model sometimes wraps output in.
func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```JSON", "```mermaid", "```"} {
		if strings.HasPrefix(cleaned, fence) {
			cleaned = strings.TrimPrefix(cleaned, fence)
			break
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
