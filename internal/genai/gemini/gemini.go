// Package gemini implements genai.Generator against the Google Generative
// Language API (generateContent).
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-shoe-studio/internal/genai"
)

// Options configures the client.
type Options struct {
	BaseURL string // https://generativelanguage.googleapis.com
	Model   string // gemini-2.5-flash-image
	APIKey  string
	Timeout time.Duration
	// APIKeyInQuery sends the key as ?key=; otherwise the x-goog-api-key header is used.
	APIKeyInQuery bool
	HTTPClient    *http.Client
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if o.Model == "" {
		o.Model = "gemini-2.5-flash-image"
	}
	if o.Timeout <= 0 {
		o.Timeout = 90 * time.Second
	}
}

type Client struct {
	hc      *http.Client
	url     string
	apiKey  string
	inQuery bool
}

func New(opts Options) *Client {
	opts.defaults()
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	endpoint := strings.TrimRight(opts.BaseURL, "/") +
		"/v1beta/models/" + url.PathEscape(opts.Model) + ":generateContent"
	return &Client{hc: hc, url: endpoint, apiKey: opts.APIKey, inQuery: opts.APIKeyInQuery}
}

// CheckCredential reports a missing or placeholder API key.
func (c *Client) CheckCredential() error {
	return genai.CheckAPIKey(c.apiKey)
}

// wire types (minimal fields)
type gmInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}
type gmPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *gmInlineData `json:"inlineData,omitempty"`
}
type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}
type gmGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}
type gmReq struct {
	Contents         []gmContent         `json:"contents"`
	GenerationConfig *gmGenerationConfig `json:"generationConfig,omitempty"`
}
type gmResp struct {
	Candidates []struct {
		Content struct {
			Parts []gmPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func encodeRequest(r genai.Request) ([]byte, error) {
	parts := make([]gmPart, 0, len(r.Images)+1)
	parts = append(parts, gmPart{Text: r.Instruction})
	for _, img := range r.Images {
		parts = append(parts, gmPart{InlineData: &gmInlineData{
			MimeType: img.MimeType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}
	return json.Marshal(&gmReq{
		Contents:         []gmContent{{Role: "user", Parts: parts}},
		GenerationConfig: &gmGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
}

func decodeResponse(gr *gmResp) (*genai.Response, error) {
	if len(gr.Candidates) == 0 {
		if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: blocked: %s", genai.ErrResponseInvalid, gr.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: no candidates", genai.ErrResponseInvalid)
	}
	out := &genai.Response{}
	for _, p := range gr.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: inline data: %v", genai.ErrResponseInvalid, err)
			}
			out.Parts = append(out.Parts, genai.Part{Image: &genai.InlineImage{Data: data, MimeType: p.InlineData.MimeType}})
			continue
		}
		out.Parts = append(out.Parts, genai.Part{Text: p.Text})
	}
	return out, nil
}

// Generate issues exactly one generateContent call. It never retries.
func (c *Client) Generate(ctx context.Context, r genai.Request) (*genai.Response, error) {
	if err := c.CheckCredential(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	body, err := encodeRequest(r)
	if err != nil {
		return nil, fmt.Errorf("encode: %v: %w", err, genai.ErrInvalidInput)
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %v: %w", err, genai.ErrInvalidInput)
	}
	if c.inQuery {
		q := u.Query()
		q.Set("key", c.apiKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %v: %w", err, genai.ErrInvalidInput)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if !c.inQuery {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, genai.ErrRateLimited
	}
	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(slurp))
		if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode/100 == 5 {
			return nil, genai.UpstreamError{Status: resp.StatusCode, Message: msg}
		}
		return nil, fmt.Errorf("gemini upstream %d: %s: %w", resp.StatusCode, msg, genai.ErrInvalidInput)
	}

	var gr gmResp
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, genai.ErrResponseInvalid)
	}
	return decodeResponse(&gr)
}
