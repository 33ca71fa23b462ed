// Package outreach personalizes prospection messages, using Gemini
// for the relevance analysis and plain template substitution for the
// message body so generation never comes back empty.
package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/octobees/prospect-agent/internal/entity"
)

// Placeholders recognized in message templates.
const (
	PlaceholderCompany     = "{nom_entreprise}"
	PlaceholderManager     = "{nom_dirigeant}"
	PlaceholderHighlight   = "{point_specifique}"
	PlaceholderProposition = "{proposition_valeur}"
)

// Fallback values used when the analysis cannot be produced.
const (
	fallbackManager   = "Monsieur/Madame"
	fallbackHighlight = "votre expertise"
)

// Analysis is the relevance assessment for one prospect.
type Analysis struct {
	HighlightedPoint string `json:"point_fort"`
	Reason           string `json:"raison"`
	Proposal         string `json:"proposition"`
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"point_fort":  {Type: genai.TypeString},
		"raison":      {Type: genai.TypeString},
		"proposition": {Type: genai.TypeString},
	},
	Required: []string{"point_fort", "raison", "proposition"},
}

// Config configures the generator.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for tests.
	BaseURL string
}

// Generator produces relevance analyses and outreach messages.
type Generator struct {
	client *genai.Client
	model  string
}

// New builds a generator backed by the Gemini API.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

// AnalyzeRelevance asks the model why this prospect is worth
// contacting. On any failure it returns a usable fallback analysis
// together with the error, so the pipeline can log and move on.
func (g *Generator) AnalyzeRelevance(ctx context.Context, p *entity.Prospect, serviceOffered, valueProposition string) (Analysis, error) {
	fallback := FallbackAnalysis(serviceOffered, valueProposition)

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(analysisPrompt(p, serviceOffered)),
		&genai.GenerateContentConfig{
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	)
	if err != nil {
		return fallback, fmt.Errorf("gemini analysis: %w", err)
	}

	var parsed Analysis
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return fallback, fmt.Errorf("gemini analysis: parse structured json: %w", err)
	}

	parsed.HighlightedPoint = strings.TrimSpace(parsed.HighlightedPoint)
	parsed.Reason = strings.TrimSpace(parsed.Reason)
	parsed.Proposal = strings.TrimSpace(parsed.Proposal)
	if parsed.HighlightedPoint == "" {
		parsed.HighlightedPoint = fallback.HighlightedPoint
	}
	if parsed.Reason == "" {
		parsed.Reason = fallback.Reason
	}
	if parsed.Proposal == "" {
		parsed.Proposal = fallback.Proposal
	}
	return parsed, nil
}

// FallbackAnalysis builds the deterministic analysis used when the
// model is unavailable or answers with blanks.
func FallbackAnalysis(serviceOffered, valueProposition string) Analysis {
	reason := strings.TrimSpace("votre entreprise pourrait bénéficier de " + serviceOffered)
	proposal := strings.TrimSpace(valueProposition)
	if proposal == "" {
		proposal = strings.TrimSpace(serviceOffered)
	}
	return Analysis{
		HighlightedPoint: fallbackHighlight,
		Reason:           reason,
		Proposal:         proposal,
	}
}

// RenderMessage fills a template with the prospect and analysis data.
// Unknown placeholders are left untouched.
func RenderMessage(template string, p *entity.Prospect, analysis Analysis, valueProposition string) string {
	highlight := strings.TrimSpace(analysis.HighlightedPoint)
	if highlight == "" {
		highlight = fallbackHighlight
	}
	manager := fallbackManager
	if p.ContactName != nil && strings.TrimSpace(*p.ContactName) != "" {
		manager = strings.TrimSpace(*p.ContactName)
	}
	replacer := strings.NewReplacer(
		PlaceholderCompany, p.Name,
		PlaceholderManager, manager,
		PlaceholderHighlight, highlight,
		PlaceholderProposition, strings.TrimSpace(valueProposition),
	)
	return strings.TrimSpace(replacer.Replace(template))
}

func analysisPrompt(p *entity.Prospect, serviceOffered string) string {
	var sb strings.Builder
	sb.WriteString("Tu aides une agence à préparer un premier contact commercial.\n")
	sb.WriteString("Service proposé: " + serviceOffered + "\n")
	sb.WriteString("Entreprise: " + p.Name + "\n")
	if p.Description != nil && *p.Description != "" {
		sb.WriteString("Description: " + *p.Description + "\n")
	}
	if site := p.WebsiteOrEmpty(); site != "" {
		sb.WriteString("Site web: " + site + "\n")
	} else {
		sb.WriteString("Site web: aucun\n")
	}
	if p.Industry != nil && *p.Industry != "" {
		sb.WriteString("Secteur: " + *p.Industry + "\n")
	}
	if len(p.Technologies) > 0 {
		sb.WriteString("Technologies: " + strings.Join(p.Technologies, ", ") + "\n")
	}
	sb.WriteString(`
Réponds UNIQUEMENT avec un objet JSON contenant:
- point_fort: un point fort concret de cette entreprise (une phrase courte)
- raison: pourquoi le service proposé lui serait utile (une phrase)
- proposition: l'angle d'approche recommandé (une phrase)

Règles:
- Écris en français.
- Reste factuel, n'invente pas de chiffres.
`)
	return strings.TrimSpace(sb.String())
}
