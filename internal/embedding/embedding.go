// Package embedding provides a pluggable interface for text embedding
// providers plus the vector math shared by the search paths.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Provider generates embedding vectors from text. Implementations must be
// deterministic about their dimensionality: every vector returned has exactly
// Dims() elements.
type Provider interface {
	// Init prepares the provider (connections, model warmup). Safe to call once.
	Init(ctx context.Context) error
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Close releases provider resources.
	Close() error
	// ModelName identifies the model for provenance on stored records.
	ModelName() string
	// Dims is the fixed vector width.
	Dims() int
}

// --- Ollama provider ---

// OllamaProvider uses a local Ollama instance for embeddings.
type OllamaProvider struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaProvider creates a provider using Ollama's embeddings API.
// Default model: nomic-embed-text (768 dims), all-minilm (384 dims).
func NewOllamaProvider(model string) *OllamaProvider {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	dims := 768 // default for nomic-embed-text
	if model == "all-minilm" {
		dims = 384
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Init verifies nothing; Ollama accepts requests lazily.
func (p *OllamaProvider) Init(ctx context.Context) error { return nil }

// Close is a no-op; the HTTP client holds no persistent state worth tearing down.
func (p *OllamaProvider) Close() error { return nil }

// ModelName returns the configured model identifier.
func (p *OllamaProvider) ModelName() string { return "ollama/" + p.model }

// Dims returns the vector width for the configured model.
func (p *OllamaProvider) Dims() int { return p.dims }

// Embed requests a single embedding from Ollama.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}
	Normalize(result.Embedding)
	return result.Embedding, nil
}

// EmbedBatch embeds texts sequentially; the Ollama API takes one prompt per call.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// --- OpenAI-compatible provider ---

// OpenAIProvider uses any OpenAI-compatible embedding API.
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	dims    int
	client  *http.Client
}

type openaiEmbedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible API.
func NewOpenAIProvider(baseURL, apiKey, model string, dims int) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dims == 0 {
		dims = 1536
	}
	return &OpenAIProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Init is a no-op.
func (p *OpenAIProvider) Init(ctx context.Context) error { return nil }

// Close is a no-op.
func (p *OpenAIProvider) Close() error { return nil }

// ModelName returns the configured model identifier.
func (p *OpenAIProvider) ModelName() string { return p.model }

// Dims returns the vector width for the configured model.
func (p *OpenAIProvider) Dims() int { return p.dims }

// Embed requests a single embedding.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(openaiEmbedRequest{Input: text, Model: p.model})
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error %d: %s", resp.StatusCode, string(b))
	}

	var result openaiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	vec := result.Data[0].Embedding
	Normalize(vec)
	return vec, nil
}

// EmbedBatch embeds texts sequentially.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// --- Factory ---

// NewFromEnv creates a provider from environment variables.
// LLIAM_EMBED_PROVIDER: "ollama" | "openai" | "hash" | "" (hash)
// LLIAM_EMBED_MODEL: model name
// LLIAM_EMBED_URL: base URL override
// OPENAI_API_KEY: for openai provider
func NewFromEnv() Provider {
	provider := os.Getenv("LLIAM_EMBED_PROVIDER")
	model := os.Getenv("LLIAM_EMBED_MODEL")

	switch provider {
	case "ollama":
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaProvider(model)
	case "openai":
		url := os.Getenv("LLIAM_EMBED_URL")
		key := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(url, key, model, 0)
	default:
		return NewHashProvider()
	}
}
