// internal/app/system/suggest/suggest.go
//
// Package suggest asks a generative model for song suggestions for a
// liturgical celebration. One request per call: no caching, no retry.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("suggestion service is not configured")

// Suggester produces song suggestions.
type Suggester interface {
	Suggest(ctx context.Context, celebration, focus string) ([]models.SongSuggestion, error)
}

// Func adapts a function to Suggester.
type Func func(ctx context.Context, celebration, focus string) ([]models.SongSuggestion, error)

func (f Func) Suggest(ctx context.Context, celebration, focus string) ([]models.SongSuggestion, error) {
	return f(ctx, celebration, focus)
}

const systemInstruction = "Você é um assistente útil para coordenadores de pastoral da música."

// Gemini is a Suggester backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini client. An empty apiKey yields a Suggester
// that always fails with ErrNotConfigured, so the rest of the app still runs.
func NewGemini(ctx context.Context, apiKey, model string) (Suggester, error) {
	if apiKey == "" {
		return Func(func(context.Context, string, string) ([]models.SongSuggestion, error) {
			return nil, ErrNotConfigured
		}), nil
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Suggest(ctx context.Context, celebration, focus string) ([]models.SongSuggestion, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(celebration, focus)), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}
	return Parse(resp.Text())
}

// Prompt builds the user prompt for a celebration and liturgical focus.
func Prompt(celebration, focus string) string {
	var b strings.Builder
	b.WriteString("Você é um especialista em música litúrgica católica.\n")
	fmt.Fprintf(&b, "Eu preciso de sugestões de músicas para uma celebração: %q.\n", celebration)
	fmt.Fprintf(&b, "O foco litúrgico ou tempo é: %q.\n", focus)
	b.WriteString("Por favor, sugira músicas apropriadas para os momentos principais da missa (Entrada, Ofertório, Comunhão, etc.).\n")
	b.WriteString("Dê preferência a músicas populares na igreja católica brasileira.")
	return b.String()
}

// Parse decodes the model's JSON answer. Empty text is an empty list.
func Parse(text string) ([]models.SongSuggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.SongSuggestion{}, nil
	}
	var out []models.SongSuggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return out, nil
}

func responseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"part":      str("O momento litúrgico (Ex: Entrada, Comunhão)"),
				"title":     str("Título da música"),
				"artist":    str("Compositor ou intérprete conhecido"),
				"reasoning": str("Uma breve explicação litúrgica do porquê essa música serve para este momento e tempo."),
			},
			Required: []string{"part", "title", "artist", "reasoning"},
		},
	}
}
