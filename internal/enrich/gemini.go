package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"worktime/internal/model"
	"worktime/internal/utils"
)

// Gemini calls the Gemini API for place names and summaries
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini enricher
func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gemini{client: client, model: modelName, timeout: timeout}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return cleanText(resp.Text()), nil
}

// PlaceName asks for the address or place name at the coordinates
func (g *Gemini) PlaceName(ctx context.Context, loc model.Location) (string, error) {
	return g.generate(ctx, PlacePrompt(loc))
}

// Summarize asks for a one-sentence timesheet summary
func (g *Gemini) Summarize(ctx context.Context, jobName string, worked time.Duration) (string, error) {
	return g.generate(ctx, SummaryPrompt(jobName, worked))
}

// PlacePrompt is the prompt sent for reverse geocoding
func PlacePrompt(loc model.Location) string {
	return fmt.Sprintf("What is the specific address or place name at latitude %.6f and longitude %.6f? "+
		"Return only the address/place name concisely.", loc.Lat, loc.Lng)
}

// SummaryPrompt is the prompt sent for work summaries
func SummaryPrompt(jobName string, worked time.Duration) string {
	return fmt.Sprintf("Generate a very short, professional one-sentence summary for a timesheet log.\n"+
		"Job: %q.\nDuration: %s.\n"+
		"Format: \"Completed [Task] in [Duration]. [Encouraging remark]\"", jobName, utils.FormatHours(worked))
}

// cleanText strips whitespace and markdown emphasis the model sometimes adds
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_`")
	return strings.TrimSpace(s)
}
