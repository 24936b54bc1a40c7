// Package textgen is the black-box text-generation collaborator used
// for fee descriptions and financial insights. Failures degrade to
// "generation unavailable"; they never block the surrounding form.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FeeDescriptionInput describes the fee the text is generated for.
type FeeDescriptionInput struct {
	FeeType    string  `json:"fee_type"`
	ClassLevel string  `json:"class_level"`
	Amount     float64 `json:"amount"`
}

// FeeInsightsInput describes the school whose fee structure is analyzed.
type FeeInsightsInput struct {
	FeeStructure string `json:"fee_structure"`
	StudentCount int    `json:"student_count"`
	Location     string `json:"location"`
	SchoolType   string `json:"school_type"`
	OtherInfo    string `json:"other_info,omitempty"`
}

// FeeInsights is the generated analysis.
type FeeInsights struct {
	Insights    string `json:"insights"`
	Suggestions string `json:"suggestions"`
}

// Client calls the text-generation service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client with a generous timeout; generation is slow.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FeeDescription generates a parent-facing description for a fee.
func (c *Client) FeeDescription(ctx context.Context, in FeeDescriptionInput) (string, error) {
	if c.Skip {
		return fmt.Sprintf("%s for class %s, amount %.0f.", in.FeeType, in.ClassLevel, in.Amount), nil
	}

	var out struct {
		Description string `json:"description"`
	}
	if err := c.post(ctx, "/v1/fee-description", in, &out); err != nil {
		return "", err
	}
	if out.Description == "" {
		return "", fmt.Errorf("textgen: empty description")
	}
	return out.Description, nil
}

// FeeInsights generates insights and suggestions for the school's fee
// structure.
func (c *Client) FeeInsights(ctx context.Context, in FeeInsightsInput) (*FeeInsights, error) {
	if c.Skip {
		return &FeeInsights{
			Insights:    "Fee structure is broadly in line with comparable schools.",
			Suggestions: "Consider staggering due dates across the term.",
		}, nil
	}

	var out FeeInsights
	if err := c.post(ctx, "/v1/fee-insights", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("textgen: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("textgen: error %s: %s", resp.Status, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("textgen: decode response: %w", err)
	}
	return nil
}
