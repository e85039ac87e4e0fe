package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

// --- Summarizer Model Prompts ---
const SummarizerSystemPrompt = "You are a careful document summarization assistant. You only use information present in the text you are given."
const SummarizerUserPrompt = `Please provide a concise summary of the following text in approximately %d words or less.
Focus on the main points and key information.

Text:
%s

Summary:`

// --- QA Model Prompts ---
const QASystemPrompt = "You are a question answering assistant. You answer strictly from the context you are given."
const QAUserPrompt = `Based on the following context, please answer the question.
If the answer cannot be found in the context, please say so.

Context:
%s

Question: %s

Answer:`

// summaryRefusalPhrases mark a model reply that declined to summarize.
var summaryRefusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot provide",
	"as a large language model",
}

// VertexConfig configures the Gemini models used for summaries and answers.
type VertexConfig struct {
	ProjectID string
	Region    string
	Model     string
	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// VertexGateway generates summaries and answers with Gemini on Vertex AI.
// The zero value is a disabled gateway: IsAvailable reports false and every
// call fails with apperr.ErrServiceUnavailable.
type VertexGateway struct {
	SummarizerModel *genai.GenerativeModel
	QAModel         *genai.GenerativeModel
	baseClient      *genai.Client
	timeout         time.Duration
}

// NewVertexGateway creates a gateway holding both pre-configured models.
func NewVertexGateway(ctx context.Context, cfg VertexConfig) (*VertexGateway, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewVertexGateway: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	summarizerModel := baseClient.GenerativeModel(cfg.Model)
	summarizerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SummarizerSystemPrompt)},
	}
	summarizerModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.2),
	}

	qaModel := baseClient.GenerativeModel(cfg.Model)
	qaModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(QASystemPrompt)},
	}
	qaModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &VertexGateway{
		SummarizerModel: summarizerModel,
		QAModel:         qaModel,
		baseClient:      baseClient,
		timeout:         timeout,
	}, nil
}

// IsAvailable reports whether the gateway was configured with a live client.
func (g *VertexGateway) IsAvailable() bool {
	return g != nil && g.SummarizerModel != nil && g.QAModel != nil
}

// Summarize asks the model for a summary of roughly maxLength words.
func (g *VertexGateway) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if !g.IsAvailable() {
		return "", apperr.ErrServiceUnavailable
	}
	summary, err := g.generate(ctx, g.SummarizerModel, BuildSummarizePrompt(text, maxLength))
	if err != nil {
		return "", err
	}
	if isRefusal(summary) {
		slog.Error("LLM refusal detected", "response", summary)
		return "", fmt.Errorf("%w: gemini response indicates refusal to summarize", apperr.ErrGenerationFailed)
	}
	return summary, nil
}

// Answer asks the model to answer question using only contextText.
func (g *VertexGateway) Answer(ctx context.Context, question, contextText string) (string, error) {
	if !g.IsAvailable() {
		return "", apperr.ErrServiceUnavailable
	}
	return g.generate(ctx, g.QAModel, BuildQAPrompt(contextText, question))
}

func (g *VertexGateway) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	geminiResp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGenerationError(err)
	}

	content := extractText(geminiResp)
	if content == "" {
		return "", fmt.Errorf("%w: empty response from model", apperr.ErrGenerationFailed)
	}
	return content, nil
}

// Close releases the underlying client.
func (g *VertexGateway) Close() error {
	if g != nil && g.baseClient != nil {
		return g.baseClient.Close()
	}
	return nil
}

// BuildSummarizePrompt renders the summarization prompt.
func BuildSummarizePrompt(text string, maxLength int) string {
	return fmt.Sprintf(SummarizerUserPrompt, maxLength, text)
}

// BuildQAPrompt renders the question answering prompt.
func BuildQAPrompt(contextText, question string) string {
	return fmt.Sprintf(QAUserPrompt, contextText, question)
}

// classifyGenerationError separates an unreachable or misconfigured service from
// a request the model itself rejected. A cancelled call keeps context.Canceled
// and carries no error kind.
func classifyGenerationError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if status.Code(err) == codes.Canceled {
		return fmt.Errorf("%w: %v", context.Canceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: generation timed out: %v", apperr.ErrServiceUnavailable, err)
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %v", apperr.ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: failed to generate content from gemini: %v", apperr.ErrGenerationFailed, err)
}

// extractText joins the text parts of the first candidate and strips code fences.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(content.String())
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}

func isRefusal(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range summaryRefusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
