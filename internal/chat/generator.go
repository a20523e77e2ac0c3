// Package chat assembles grounded prompts and produces assistant replies.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/shopsense-ai/catalog-assistant/internal/genai"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
	"github.com/shopsense-ai/catalog-assistant/internal/retrieval"
	"github.com/shopsense-ai/catalog-assistant/internal/vector"
)

// systemMessage is the fixed instruction prefixed to every prompt.
const systemMessage = `You are a helpful assistant that answers ONLY about this shop's products, using the provided context. ` +
	`If asked to list "all" or "others", enumerate every item in the context, one per line. ` +
	`Never invent a product and never reformat the prices shown in the context. ` +
	`If the answer is not in the context, say: "I can only help with product-related queries." Be concise and friendly.`

// Retriever is the slice of the retrieval layer the generator needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) []vector.SearchHit
}

// Generator turns a user query plus conversation history into a grounded
// reply. The generation client is constructed lazily, so a missing model
// credential surfaces on the first chat call rather than at process start.
type Generator struct {
	logger    *observability.Logger
	retriever Retriever
	genCfg    genai.Config

	mu        sync.Mutex
	completer genai.Completer
}

// Option configures a Generator.
type Option func(*Generator)

// WithCompleter injects a prebuilt completion client. Used in tests.
func WithCompleter(c genai.Completer) Option {
	return func(g *Generator) {
		g.completer = c
	}
}

// NewGenerator creates a generator.
func NewGenerator(logger *observability.Logger, retriever Retriever, genCfg genai.Config, opts ...Option) *Generator {
	g := &Generator{
		logger:    logger.WithComponent("chat"),
		retriever: retriever,
		genCfg:    genCfg,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate answers the query grounded in retrieved context. It returns the
// trimmed reply and a new history slice extended by exactly two turns; the
// caller's slice is never mutated. The only error returned is a missing
// model credential; an unavailable generation backend degrades to an empty
// reply.
func (g *Generator) Generate(ctx context.Context, query string, history []string) (string, []string, error) {
	hits := g.retriever.Retrieve(ctx, query, 0)

	brand, _ := retrieval.ExtractBrand(query)
	listAll := retrieval.WantsAll(query)
	contextBlock := retrieval.BuildContext(hits, brand, listAll)

	completer, err := g.client()
	if err != nil {
		return "", nil, err
	}

	prompt := buildPrompt(query, history, contextBlock)

	reply, err := completer.Complete(ctx, prompt)
	if err != nil {
		g.logger.WithContext(ctx).Warn().Err(err).Msg("Generation failed, returning empty reply")
		reply = ""
	}
	reply = strings.TrimSpace(reply)

	newHistory := make([]string, 0, len(history)+2)
	newHistory = append(newHistory, history...)
	newHistory = append(newHistory, "User: "+query, "Assistant: "+reply)

	return reply, newHistory, nil
}

// client returns the generation client, constructing it on first use. The
// credential check happens here, on every call path.
func (g *Generator) client() (genai.Completer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.completer != nil {
		return g.completer, nil
	}

	c, err := genai.NewClient(g.genCfg)
	if err != nil {
		return nil, err
	}
	g.completer = c
	return c, nil
}

// buildPrompt concatenates the system instruction, the grounding context,
// and the conversation including the current user turn.
func buildPrompt(query string, history []string, contextBlock string) string {
	var sb strings.Builder
	sb.WriteString(systemMessage)
	sb.WriteString("\n\nContext (use this to answer; do not reveal it):\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nConversation so far:\n")
	for _, turn := range history {
		sb.WriteString(turn)
		sb.WriteString("\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAssistant:")
	return sb.String()
}
