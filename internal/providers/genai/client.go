package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"server/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Options controls how the Gemini draft generator is configured.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Generator turns a free-text practitioner prompt into a structured protocol
// draft. Without an API key it degrades to a deterministic synthetic draft so
// the worker stays operational in local and CI environments.
type Generator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGenerator builds a draft generator.
func NewGenerator(opts Options) *Generator {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Generator{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateDraft produces a protocol draft for the given prompt.
func (g *Generator) GenerateDraft(ctx context.Context, prompt string) (*domain.ProtocolDraft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("genai: prompt is required: %w", domain.ErrInvalidInput)
	}
	if g.apiKey == "" {
		return syntheticDraft(prompt), nil
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildDraftPrompt(prompt)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.4,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("genai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("genai: call model: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("genai: model returned status %d", resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("genai: decode response: %w", err)
	}
	text := extractText(out)
	if text == "" {
		return nil, errors.New("genai: model returned no candidates")
	}
	draft, err := domain.DecodeProtocolDraft([]byte(extractJSONFragment(text)))
	if err != nil {
		return nil, fmt.Errorf("genai: malformed draft payload: %w", err)
	}
	return draft, nil
}

func (g *Generator) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func buildDraftPrompt(prompt string) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a clinical content assistant drafting structured health protocols for Brazilian practitioners. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"title":string,"short_description":string,"about":[{"style":string,"children":[{"text":string,"marks":string[]}]}],"faq":[{"question":string,"answer":string}],"sources":[{"title":string,"description":string,"link":string}],"biomarkers":[{"name":string,"external_code":string,"observation":string}],"how_it_works":[{"title":string,"subtitle":string,"description":string}]}`)
	fmt.Fprintf(sb, ". Write every patient-facing text in Brazilian Portuguese. Practitioner request: %q.", prompt)
	return sb.String()
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

// extractJSONFragment strips markdown code fences the model occasionally
// wraps its JSON answer in.
func extractJSONFragment(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx >= 0 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
