package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/w3art/marko/configs"
	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
)

const anthropicBaseURL = "https://api.anthropic.com"

const markoSystemPrompt = `Tu es Marko, un CMO (Chief Marketing Officer) AI expert en marketing digital et réseaux sociaux.

Ton rôle:
- Aider les PME à définir leur stratégie marketing (la "vibe")
- Créer du contenu engageant pour Instagram et Facebook
- Gérer les campagnes publicitaires Meta
- Expliquer les performances de manière simple et actionnable

Personnalité:
- Professionnel mais accessible
- Direct et concis
- Créatif et stratégique
- Tu parles français naturellement

Capacités:
- Génération de posts, stories, reels, carousels
- Création de copy pour ads
- Analyse de performance
- Suggestions de stratégie

Quand on te demande de créer du contenu:
1. Pose des questions si le brief n'est pas clair
2. Propose plusieurs options quand c'est pertinent
3. Explique tes choix stratégiques
4. Adapte le ton à la marque

Format de réponse pour le contenu:
- Utilise des sections claires
- Inclus les hashtags pertinents
- Suggère le meilleur moment de publication
- Indique le type de contenu (post, story, reel, ad)

Tu as accès aux fonctionnalités suivantes que tu peux déclencher:
- create_content: Créer et sauvegarder du contenu
- publish_content: Publier du contenu sur Meta
- get_analytics: Récupérer les analytics
- schedule_content: Planifier une publication

Réponds toujours de manière utile et actionnable.`

type AIService interface {
	Chat(ctx context.Context, messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error)
	GenerateContent(ctx context.Context, req *transfer.ContentGenerateRequest) (*transfer.GenerationResult, error)
	AnalyzePerformance(ctx context.Context, metrics *models.ContentAnalytics, contentType, industry string) (string, error)
	GenerateStrategy(ctx context.Context, req *transfer.StrategyRequest) (models.JSONMap, error)
}

type aiService struct {
	cfg    config.Config
	client *resty.Client
}

func NewAIService(cfg config.Config) AIService {
	client := resty.New().
		SetBaseURL(anthropicBaseURL).
		SetTimeout(60 * time.Second).
		SetHeader("x-api-key", cfg.AnthropicAPIKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetHeader("Content-Type", "application/json")

	return &aiService{
		cfg:    cfg,
		client: client,
	}
}

type anthropicRequest struct {
	Model     string               `json:"model"`
	MaxTokens int                  `json:"max_tokens"`
	System    string               `json:"system,omitempty"`
	Messages  []transfer.AIMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *aiService) complete(ctx context.Context, system string, messages []transfer.AIMessage, maxTokens int) (string, error) {
	var result anthropicResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(anthropicRequest{
			Model:     s.cfg.AnthropicModel,
			MaxTokens: maxTokens,
			System:    system,
			Messages:  messages,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/messages")
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
	}
	if resp.IsError() || len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic error: unexpected response (status %d)", resp.StatusCode())
	}

	return result.Content[0].Text, nil
}

// Chat runs a conversation turn with the assistant persona, enriched with
// whatever account context is known.
func (s *aiService) Chat(ctx context.Context, messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
	system := markoSystemPrompt

	if chatContext != nil {
		var b strings.Builder
		b.WriteString("\n\nContexte actuel:\n")
		if chatContext.UserName != "" {
			fmt.Fprintf(&b, "- Utilisateur: %s\n", chatContext.UserName)
		}
		if chatContext.CompanyName != "" {
			fmt.Fprintf(&b, "- Entreprise: %s\n", chatContext.CompanyName)
		}
		if chatContext.Campaign != "" {
			fmt.Fprintf(&b, "- Campagne active: %s\n", chatContext.Campaign)
		}
		if chatContext.MetaConnected {
			b.WriteString("- Compte Meta connecté: Oui\n")
		}
		system += b.String()
	}

	return s.complete(ctx, system, messages, 2048)
}

func (s *aiService) GenerateContent(ctx context.Context, req *transfer.ContentGenerateRequest) (*transfer.GenerationResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `Génère du contenu marketing avec les spécifications suivantes:

Type de contenu: %s
Plateforme: %s
Brief: %s
`, req.ContentType, req.Platform, req.Brief)

	if req.BrandVoice != "" {
		fmt.Fprintf(&b, "Ton de la marque: %s\n", req.BrandVoice)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Audience cible: %s\n", req.TargetAudience)
	}
	if req.Objective != "" {
		fmt.Fprintf(&b, "Objectif: %s\n", req.Objective)
	}

	b.WriteString(`
Réponds en JSON avec cette structure exacte:
{
    "caption": "Le texte du post/ad",
    "hashtags": ["hashtag1", "hashtag2", ...],
    "cta": "Call to action suggéré",
    "visual_suggestion": "Description du visuel recommandé",
    "best_time": "Meilleur moment pour publier",
    "strategy_notes": "Notes stratégiques et explications"
}
`)

	text, err := s.complete(ctx,
		"Tu es un expert en marketing digital. Réponds uniquement en JSON valide.",
		[]transfer.AIMessage{{Role: models.RoleUser, Content: b.String()}},
		1024)
	if err != nil {
		return nil, err
	}

	var content transfer.GeneratedContent
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &content); err != nil {
		// The model ignored the JSON instruction; hand the raw reply back
		// instead of failing the request.
		return &transfer.GenerationResult{RawText: text}, nil
	}
	return &transfer.GenerationResult{Content: &content}, nil
}

func (s *aiService) AnalyzePerformance(ctx context.Context, metrics *models.ContentAnalytics, contentType, industry string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `Analyse ces métriques de performance pour un %s:

Métriques:
- Impressions: %d
- Portée: %d
- Engagement: %d
- Likes: %d
- Commentaires: %d
- Partages: %d
- Clics: %d
`, contentType, metrics.Impressions, metrics.Reach, metrics.Engagement,
		metrics.Likes, metrics.Comments, metrics.Shares, metrics.Clicks)

	if metrics.SpendCents > 0 {
		fmt.Fprintf(&b, "- Dépense: %.2f€\n", float64(metrics.SpendCents)/100)
		fmt.Fprintf(&b, "- CPC: %.2f€\n", float64(metrics.CPCCents)/100)
		fmt.Fprintf(&b, "- ROAS: %.2fx\n", float64(metrics.ROASx100)/100)
	}
	if industry != "" {
		fmt.Fprintf(&b, "\nIndustrie: %s\n", industry)
	}

	b.WriteString(`
Fournis une analyse en français avec:
1. Performance globale (bien/moyen/à améliorer)
2. Points forts
3. Points à améliorer
4. Recommandations concrètes pour le prochain contenu
`)

	return s.complete(ctx, markoSystemPrompt,
		[]transfer.AIMessage{{Role: models.RoleUser, Content: b.String()}},
		1024)
}

func (s *aiService) GenerateStrategy(ctx context.Context, req *transfer.StrategyRequest) (models.JSONMap, error) {
	durationDays := req.DurationDays
	if durationDays <= 0 {
		durationDays = 30
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Crée une stratégie marketing pour:

Business: %s
Objectifs: %s
Durée: %d jours
`, req.BusinessDescription, req.Goals, durationDays)

	if req.Budget > 0 {
		fmt.Fprintf(&b, "Budget: %d€\n", req.Budget)
	}

	b.WriteString(`
Réponds en JSON avec cette structure:
{
    "vibe": "La tonalité/ambiance générale de la communication",
    "content_pillars": ["Pilier 1", "Pilier 2", "Pilier 3"],
    "weekly_cadence": {
        "posts_per_week": 3,
        "stories_per_week": 5,
        "reels_per_week": 2,
        "ads": true
    },
    "content_ideas": [
        {"type": "post", "idea": "...", "day": "lundi"},
        {"type": "reel", "idea": "...", "day": "mercredi"}
    ],
    "hashtag_strategy": ["hashtag1", "hashtag2"],
    "best_posting_times": ["10h", "18h"],
    "budget_allocation": {
        "awareness": 30,
        "engagement": 40,
        "conversion": 30
    }
}
`)

	text, err := s.complete(ctx,
		"Tu es un stratège marketing expert. Réponds uniquement en JSON valide.",
		[]transfer.AIMessage{{Role: models.RoleUser, Content: b.String()}},
		2048)
	if err != nil {
		return nil, err
	}

	var strategy models.JSONMap
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &strategy); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("could not parse strategy")
	}
	return strategy, nil
}

// stripCodeFence unwraps a markdown code block when the model wraps its JSON
// reply in one.
func stripCodeFence(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		rest := text[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	} else if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	return strings.TrimSpace(text)
}
