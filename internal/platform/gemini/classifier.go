package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/quillback/loglearn/internal/classify"
	"github.com/quillback/loglearn/internal/config"
)

// classifyPromptTemplate instructs the model to label every numbered text
// and answer with JSON matching responseSchema.
const classifyPromptTemplate = `You are a log analysis assistant. Assign exactly one topic to each of the numbered texts below.
{{if .LabelList}}Choose every topic from this list only: {{.LabelList}}.
{{end}}Respond with JSON only, in the form {"assignments": [{"topic": "...", "confidence": 0.0}]}.
The assignments array must contain exactly {{.Count}} entries, one per text in input order.
Confidence is your certainty in the assignment, between 0 and 1.

Texts:
{{range .Items}}{{.Number}}. {{.Text}}
{{end}}`

// Classifier implements the classify.TopicClassifier interface using
// Google's Gemini API to assign topics to batches of text.
type Classifier struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure Classifier implements classify.TopicClassifier interface
var _ classify.TopicClassifier = (*Classifier)(nil)

// NewClassifier creates a new instance of Classifier with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - config: LLM configuration containing API key, model name, and retry settings
//
// Returns:
//   - A properly initialized Classifier or an error if initialization fails
func NewClassifier(ctx context.Context, logger *slog.Logger, config config.LLMConfig) (*Classifier, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Validate configuration
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", classify.ErrInvalidConfig)
	}

	if config.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", classify.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("classify").Parse(classifyPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			classify.ErrInvalidConfig, err)
	}

	// Initialize the Gemini client
	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			classify.ErrInvalidConfig, err)
	}

	return &Classifier{
		logger:         logger,
		config:         config,
		promptTemplate: promptTemplate,
		client:         client,
		model:          config.Model,
	}, nil
}

// Classify assigns a topic to each of the given texts using the Gemini API.
// It returns one assignment per text, index-aligned with texts. When labels
// is non-empty the model is constrained to choose from it.
//
// Transient API failures are retried with exponential backoff; permanent
// failures (blocked content, malformed responses) are returned immediately.
func (c *Classifier) Classify(
	ctx context.Context,
	texts []string,
	labels []string,
) ([]classify.Assignment, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	prompt, err := c.createPrompt(ctx, texts, labels)
	if err != nil {
		return nil, err
	}

	response, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return c.parseAssignments(ctx, response, len(texts))
}

// createPrompt generates a prompt string from the template with the provided
// texts and candidate labels.
func (c *Classifier) createPrompt(ctx context.Context, texts []string, labels []string) (string, error) {
	items := make([]promptItem, len(texts))
	for i, text := range texts {
		items[i] = promptItem{Number: i + 1, Text: text}
	}

	data := promptData{
		LabelList: strings.Join(labels, ", "),
		Count:     len(texts),
		Items:     items,
	}

	c.logger.DebugContext(ctx, "Generating classification prompt",
		"text_count", len(texts),
		"label_count", len(labels))

	var promptBuffer bytes.Buffer
	if err := c.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return promptBuffer.String(), nil
}

// callWithRetry makes a call to the Gemini API with exponential backoff retry logic.
//
// It attempts the call up to config.MaxRetries+1 times, using exponential
// backoff with jitter between retries for transient errors. Permanent errors
// (like content being blocked by safety filters or malformed responses) are
// returned immediately without retrying.
func (c *Classifier) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	// Initialize retry variables
	maxRetries := c.config.MaxRetries
	baseDelaySeconds := c.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Validate retry configuration
	if maxRetries < 0 {
		c.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		c.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	generateConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1 // For logging (1-based)
		c.logger.DebugContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var response *responseSchema
		var isTransientError bool

		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), generateConfig)
		if err != nil {
			// Assume transient error by default for API failures
			isTransientError = true
			c.logger.ErrorContext(ctx, "Gemini API call error",
				"error", err,
				"attempt", attemptNum)
		} else if resp == nil {
			err = fmt.Errorf("%w: nil response", classify.ErrInvalidResponse)
		} else if len(resp.Candidates) == 0 {
			err = fmt.Errorf("%w: no content generated", classify.ErrInvalidResponse)
		} else if resp.Candidates[0].Content == nil {
			err = fmt.Errorf("%w: empty content in response", classify.ErrInvalidResponse)
		} else if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			err = fmt.Errorf("%w: content blocked by safety filters", classify.ErrContentBlocked)
		} else {
			// Extract the response text
			var text strings.Builder
			for _, part := range resp.Candidates[0].Content.Parts {
				if part != nil {
					text.WriteString(part.Text)
				}
			}

			// Parse the JSON response
			var parsedResponse responseSchema
			if err = json.Unmarshal([]byte(text.String()), &parsedResponse); err != nil {
				err = fmt.Errorf("%w: failed to parse JSON response: %v", classify.ErrInvalidResponse, err)
			} else {
				response = &parsedResponse
			}
		}

		// If successful, return the response
		if err == nil {
			c.logger.DebugContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		c.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are returned immediately
		if errors.Is(err, classify.ErrContentBlocked) || errors.Is(err, classify.ErrInvalidResponse) {
			return nil, err
		}

		// Check if we've reached the max retries
		if attempt >= maxRetries {
			c.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				classify.ErrTransientFailure, maxRetries)
		}

		// Only retry for transient errors
		if !isTransientError {
			return nil, err
		}

		// Calculate exponential backoff with jitter
		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5 // Between 0.5 and 1.0
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		c.logger.DebugContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		// Wait for the delay or context cancellation
		select {
		case <-time.After(delay):
			// Continue to next retry
		case <-ctx.Done():
			c.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", classify.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	// Unreachable given the in-loop max retry check, kept as a safeguard
	return nil, fmt.Errorf("%w: failed after %d attempts", classify.ErrTransientFailure, attempt)
}

// parseAssignments converts a responseSchema from the Gemini API into
// classify.Assignment values.
//
// The response must contain exactly wantCount assignments with non-empty
// topics. Confidence values are clamped into [0, 1].
func (c *Classifier) parseAssignments(
	ctx context.Context,
	response *responseSchema,
	wantCount int,
) ([]classify.Assignment, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", classify.ErrInvalidResponse)
	}

	if len(response.Assignments) != wantCount {
		return nil, fmt.Errorf("%w: got %d assignments for %d texts",
			classify.ErrInvalidResponse, len(response.Assignments), wantCount)
	}

	assignments := make([]classify.Assignment, 0, wantCount)
	for i, a := range response.Assignments {
		if a.Topic == "" {
			return nil, fmt.Errorf("%w: assignment %d missing topic", classify.ErrInvalidResponse, i)
		}

		confidence := a.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		assignments = append(assignments, classify.Assignment{
			Topic:      a.Topic,
			Confidence: confidence,
		})
	}

	c.logger.DebugContext(ctx, "Parsed classification response",
		"assignment_count", len(assignments))

	return assignments, nil
}
