// Package fda looks up label warnings for a drug on the openFDA drug label API.
package fda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/metrics"
)

const DefaultBaseURL = "https://api.fda.gov"

// Placeholders used when a label lacks a section
const (
	NoWarnings         = "No warnings available."
	NoBoxedWarning     = "No boxed warning available."
	NoAdverseReactions = "No adverse reactions listed."
)

// ErrNotFound means openFDA has no label for the drug
var ErrNotFound = errors.New("no data found for this drug")

// DrugWarnings is the first label section of each kind for one drug.
type DrugWarnings struct {
	Drug             string `json:"drug"`
	MatchedOn        string `json:"matched_on"` // brand_name or generic_name
	Warnings         string `json:"warnings"`
	BoxedWarning     string `json:"boxed_warning"`
	AdverseReactions string `json:"adverse_reactions"`
}

// APIError is a non-2xx answer other than 404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openFDA returned %d: %s", e.StatusCode, e.Message)
}

// Client queries the drug label endpoint. The zero value uses the public
// endpoint without an API key.
type Client struct {
	BaseURL string
	APIKey  string // optional, raises the openFDA daily limit
	HTTP    *http.Client
}

// NewClient returns a client for baseURL, falling back to the public endpoint
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type labelResponse struct {
	Results []struct {
		Warnings         []string `json:"warnings"`
		BoxedWarning     []string `json:"boxed_warning"`
		AdverseReactions []string `json:"adverse_reactions"`
	} `json:"results"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// searchFields are tried in order until one returns a label
var searchFields = []string{"brand_name", "generic_name"}

// Lookup returns the label warnings for drug, matching on brand name first
// and generic name second.
func (c *Client) Lookup(ctx context.Context, drug string) (*DrugWarnings, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return nil, errors.New("drug name is required")
	}

	for _, field := range searchFields {
		label, err := c.search(ctx, field, drug)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			metrics.FDALookupsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.FDALookupsTotal.WithLabelValues("found").Inc()
		label.Drug = drug
		label.MatchedOn = field
		return label, nil
	}

	metrics.FDALookupsTotal.WithLabelValues("not_found").Inc()
	return nil, ErrNotFound
}

func (c *Client) search(ctx context.Context, field, drug string) (*DrugWarnings, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	q := url.Values{}
	q.Set("search", "openfda."+field+":"+strconv.Quote(drug))
	q.Set("limit", "1")
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/drug/label.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build openFDA request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openFDA request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read openFDA response: %w", err)
	}

	// openFDA answers 404 when the search matches nothing
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	var parsed labelResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("decode openFDA response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if len(parsed.Results) == 0 {
		return nil, ErrNotFound
	}

	r := parsed.Results[0]
	return &DrugWarnings{
		Warnings:         firstOr(r.Warnings, NoWarnings),
		BoxedWarning:     firstOr(r.BoxedWarning, NoBoxedWarning),
		AdverseReactions: firstOr(r.AdverseReactions, NoAdverseReactions),
	}, nil
}

func firstOr(sections []string, fallback string) string {
	if len(sections) == 0 || strings.TrimSpace(sections[0]) == "" {
		return fallback
	}
	return strings.TrimSpace(sections[0])
}
