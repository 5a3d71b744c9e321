// Package genai defines the remote generative-image capability: one request
// carrying an instruction and reference images, answered by a list of text and
// inline image parts.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimited       = errors.New("rate limited")
	ErrResponseInvalid   = errors.New("response invalid")
	ErrNoImage           = errors.New("response contains no image")
	ErrMissingCredential = errors.New("missing or placeholder api key")
)

// InlineImage is an image sent to or returned by the model.
type InlineImage struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// Request is a single transform request. Images[0] is the primary image; any
// further images are references.
type Request struct {
	Instruction string
	Images      []InlineImage
}

// Validate checks the request shape.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Instruction) == "" {
		return fmt.Errorf("%w: empty instruction", ErrInvalidInput)
	}
	if len(r.Images) == 0 {
		return fmt.Errorf("%w: no primary image", ErrInvalidInput)
	}
	for i, img := range r.Images {
		if len(img.Data) == 0 || img.MimeType == "" {
			return fmt.Errorf("%w: image %d is empty or untyped", ErrInvalidInput, i)
		}
	}
	return nil
}

// Part is one content part of a response: text or an inline image.
type Part struct {
	Text  string
	Image *InlineImage
}

// Response is the model's answer.
type Response struct {
	Parts []Part
}

// FirstImage returns the first inline image part.
func (r *Response) FirstImage() (InlineImage, bool) {
	if r == nil {
		return InlineImage{}, false
	}
	for _, p := range r.Parts {
		if p.Image != nil && len(p.Image.Data) > 0 {
			return *p.Image, true
		}
	}
	return InlineImage{}, false
}

// Text joins the text parts.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Generator submits a request to the remote model.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// CredentialChecker is implemented by generators that need a credential, so
// callers can detect configuration problems before doing any work.
type CredentialChecker interface {
	CheckCredential() error
}

var placeholderKeys = map[string]bool{
	"your_api_key":        true,
	"your-api-key":        true,
	"your_gemini_api_key": true,
	"changeme":            true,
	"placeholder":         true,
	"xxx":                 true,
}

// CheckAPIKey rejects empty and placeholder credentials.
func CheckAPIKey(key string) error {
	k := strings.TrimSpace(key)
	if k == "" || placeholderKeys[strings.ToLower(k)] {
		return ErrMissingCredential
	}
	return nil
}

// UpstreamError is a retryable-class failure reported by the remote service
// (5xx or 408). It satisfies net.Error.
type UpstreamError struct {
	Status  int
	Message string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("genai upstream %d: %s", e.Status, e.Message)
}

func (e UpstreamError) Timeout() bool   { return e.Status == 408 }
func (e UpstreamError) Temporary() bool { return e.Status/100 == 5 }
