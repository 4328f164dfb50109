// Package narrative produces a plain-language summary of an analysis result
// using OpenAI. Optional: the server runs without it when no API key is set.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/alikhn/weatherwindow/internal/models"
)

const systemPrompt = `You are a weather planning assistant. Given a weather
window analysis, write two or three plain sentences for the event planner:
whether the window suits the activity, which day looks best, and the main
risks. No markdown, no headings, no emoji.`

type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator reads OPENAI_API_KEY for authentication and fails when it is
// unset, which callers treat as "summaries disabled".
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Summarize writes a short planner-facing summary of the result.
func (g *Generator) Summarize(ctx context.Context, result models.AnalysisResult, activity models.Activity) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(describe(result, activity)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// describe flattens the result into a compact prompt. Only fields that help
// the summary are included.
func describe(result models.AnalysisResult, activity models.Activity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Activity: %s\n", activity)
	fmt.Fprintf(&b, "Location: %s\n", result.Location)
	fmt.Fprintf(&b, "Window: %s to %s, %d days, %d suitable, risk %s\n",
		result.DateRange.From.Format("2006-01-02"),
		result.DateRange.To.Format("2006-01-02"),
		result.WeatherWindow.TotalDays,
		result.WeatherWindow.SuitableDays,
		result.WeatherWindow.RiskLevel,
	)

	ta := result.ThresholdAnalysis
	var flags []string
	if ta.VeryHot {
		flags = append(flags, "very hot days")
	}
	if ta.VeryCold {
		flags = append(flags, "very cold days")
	}
	if ta.VeryWindy {
		flags = append(flags, "strong wind")
	}
	if ta.VeryWet {
		flags = append(flags, "heavy rain")
	}
	if ta.VeryUncomfortable {
		flags = append(flags, "high humidity")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "Hazards: %s\n", strings.Join(flags, ", "))
	}

	for i, d := range result.BestDays {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "Candidate %s: score %d (%s)\n",
			d.Date.Format("2006-01-02"), d.SafetyScore, d.Recommendation)
	}
	return b.String()
}
