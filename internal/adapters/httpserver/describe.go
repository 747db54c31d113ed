package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/marchal/traiteur/internal/domain"
)

type describedProduct struct {
	Slug string `json:"slug"`
	Text string `json:"text"`
}

// apiAdminDescribe fills empty product descriptions with short menu copy
// generated in batches. Products that already carry a description are left
// untouched.
func (s *Server) apiAdminDescribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !s.requireAdmin(w, r) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
		}
		return
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error().Msg("OPENAI_API_KEY missing")
		http.Error(w, "config", 500)
		return
	}

	seen := map[string]*domain.Product{}
	var pending []*domain.Product
	for _, mode := range []domain.ServiceMode{domain.ModeRestaurant, domain.ModeTrailer} {
		cats, err := s.catalog.ForMode(r.Context(), mode)
		if err != nil {
			http.Error(w, "catalog", 500)
			return
		}
		for ci := range cats {
			for pi := range cats[ci].Products {
				p := &cats[ci].Products[pi]
				if _, ok := seen[p.Slug]; ok {
					continue
				}
				seen[p.Slug] = p
				if p.Active && strings.TrimSpace(p.Description) == "" {
					pending = append(pending, p)
				}
			}
		}
	}
	if len(pending) == 0 {
		writeJSON(w, 200, map[string]int{"updated": 0})
		return
	}

	described, err := describeProducts(r.Context(), apiKey, pending)
	if err != nil {
		log.Error().Err(err).Msg("description generation failed")
		http.Error(w, "generation", 502)
		return
	}

	updated := 0
	for _, d := range described {
		p, ok := seen[d.Slug]
		if !ok || strings.TrimSpace(d.Text) == "" {
			continue
		}
		p.Description = strings.TrimSpace(d.Text)
		if err := s.catalog.SaveProduct(r.Context(), p); err != nil {
			log.Warn().Err(err).Str("product", p.Slug).Msg("description save failed")
			continue
		}
		updated++
	}
	writeJSON(w, 200, map[string]int{"updated": updated, "requested": len(pending)})
}

// describeProducts sends the product names in batches and parses the JSON the
// model returns. One failed batch fails the whole run; nothing is partially
// written by the caller before all batches answered.
func describeProducts(ctx context.Context, apiKey string, products []*domain.Product) ([]describedProduct, error) {
	const batchSize = 20
	totalBatches := (len(products) + batchSize - 1) / batchSize
	log.Info().Int("products", len(products)).Int("batches", totalBatches).Msg("generating descriptions")

	client := openai.NewClient(apiKey)
	var all []describedProduct

	for batchNum := 0; batchNum < totalBatches; batchNum++ {
		start := batchNum * batchSize
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]

		var names strings.Builder
		for _, p := range batch {
			fmt.Fprintf(&names, "%s: %s (%s, %s)\n", p.Slug, p.Name, p.Unit, p.BasePrice.StringFixed(2))
		}

		prompt := fmt.Sprintf(`Write a short, appetizing one-sentence menu description for each catering product below.

PRODUCTS (slug: name):
%s
Return JSON with every product:
{"products":[{"slug":"product-slug","text":"description"}]}

Keep each description under 25 words, no prices, no emojis.`, names.String())

		batchCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		resp, err := client.CreateChatCompletion(batchCtx, openai.ChatCompletionRequest{
			Model: "gpt-4o-mini",
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You write concise menu copy for a caterer. Always return valid JSON covering every product you are given.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
			MaxTokens:   4000,
		})
		cancel()

		if err != nil {
			return nil, fmt.Errorf("batch %d/%d: %w", batchNum+1, totalBatches, err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("empty response in batch %d/%d", batchNum+1, totalBatches)
		}

		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)

		var result struct {
			Products []describedProduct `json:"products"`
		}
		if err := json.Unmarshal([]byte(content), &result); err != nil {
			log.Error().Str("content", content).Err(err).Int("batch", batchNum+1).Msg("unparseable model response")
			return nil, fmt.Errorf("parse batch %d/%d: %w", batchNum+1, totalBatches, err)
		}
		if len(result.Products) < len(batch) {
			log.Warn().
				Int("batch", batchNum+1).
				Int("sent", len(batch)).
				Int("described", len(result.Products)).
				Msg("some products were not described")
		}
		all = append(all, result.Products...)
	}
	return all, nil
}
