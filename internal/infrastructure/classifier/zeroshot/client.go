// Package zeroshot adapts an HTTP zero-shot classification service
// (HuggingFace-style inference API) to the core Classifier port.
package zeroshot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/resilience"
)

// defaultMaxInputChars caps the text sent to the model when no limit
// is configured. Longer bodies add latency without changing the label
// distribution much.
const defaultMaxInputChars = 512

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	maxChars   int
	observe    func(time.Duration)
}

type Options struct {
	// RequestsPerSecond throttles outbound calls; 0 disables the
	// limiter.
	RequestsPerSecond  float64
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor

	// MaxInputChars overrides the input truncation length; 0 keeps
	// the default.
	MaxInputChars int

	// ObserveDuration, when set, receives the wall time of every
	// Classify call including retries.
	ObserveDuration func(time.Duration)
}

func New(baseURL, model string, options Options) *Client {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
	}

	maxChars := options.MaxInputChars
	if maxChars <= 0 {
		maxChars = defaultMaxInputChars
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
		maxChars:   maxChars,
		observe:    options.ObserveDuration,
	}
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
	Model      string             `json:"model,omitempty"`
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify scores the text against the candidate labels. The input is
// truncated to the model prefix length before sending.
func (c *Client) Classify(ctx context.Context, text string, labels []string, multiLabel bool) (map[string]float64, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("zeroshot classify: no candidate labels")
	}
	if c.observe != nil {
		start := time.Now()
		defer func() { c.observe(time.Since(start)) }()
	}

	request := classifyRequest{
		Inputs: truncate(text, c.maxChars),
		Parameters: classifyParameters{
			CandidateLabels: labels,
			MultiLabel:      multiLabel,
		},
		Model: c.model,
	}

	var response classifyResponse
	call := func(callCtx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(callCtx); err != nil {
				return err
			}
		}
		return c.postJSON(callCtx, "/classify", request, &response, "classify")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "zeroshot.classify", call, classifyZeroShotError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("zeroshot classify", err)
	}

	if len(response.Labels) != len(response.Scores) {
		return nil, fmt.Errorf("zeroshot classify: %d labels for %d scores", len(response.Labels), len(response.Scores))
	}
	scores := make(map[string]float64, len(response.Labels))
	for i, label := range response.Labels {
		scores[label] = response.Scores[i]
	}
	return scores, nil
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
