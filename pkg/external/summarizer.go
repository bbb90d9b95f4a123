package external

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

const (
	summaryCacheSize = 512

	noTextMessage   = "No text found in claim document."
	tooShortMessage = "Text too short to summarize."
)

// OpenAISummarizer summarizes claims via an OpenAI-compatible endpoint.
type OpenAISummarizer struct {
	client *chatClient
}

// NewOpenAISummarizer creates an OpenAI-backed summary strategy.
func NewOpenAISummarizer(config domain.LLMConfig, logger *logrus.Logger) *OpenAISummarizer {
	return &OpenAISummarizer{client: newChatClient("OpenAI", config, logger)}
}

func (s *OpenAISummarizer) Name() string { return "openai" }

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.client.complete(ctx,
		"You are a healthcare insurance claim expert. Summarize claims in plain English, highlighting key details like diagnosis codes, denial reasons, and treatment costs.",
		fmt.Sprintf("Summarize this insurance claim in plain English, focusing on what was denied and why: %s", truncate(text, 4000)),
		500, 0.3)
}

// XAISummarizer summarizes claims via the xAI chat API.
type XAISummarizer struct {
	client *chatClient
}

// NewXAISummarizer creates an xAI-backed summary strategy.
func NewXAISummarizer(config domain.LLMConfig, logger *logrus.Logger) *XAISummarizer {
	return &XAISummarizer{client: newChatClient("xAI", config, logger)}
}

func (s *XAISummarizer) Name() string { return "xai" }

func (s *XAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.client.complete(ctx,
		"You are a healthcare equity analyst. Analyze insurance claim trends and bias patterns in real-time.",
		fmt.Sprintf("Summarize this insurance claim in plain English, focusing on what was denied and why: %s", truncate(text, 3000)),
		500, 0.7)
}

// TemplateSummarizer is the local, zero-dependency fallback. It never fails.
type TemplateSummarizer struct{}

func (TemplateSummarizer) Name() string { return "template" }

func (TemplateSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 50 {
		return tooShortMessage, nil
	}
	return fmt.Sprintf("Claim excerpt (automatic summary unavailable): %s", truncate(trimmed, 500)), nil
}

// SummarizerChain tries strategies in order and returns the first success.
// Results are cached by content hash so repeated summaries of the same
// document skip the external calls.
type SummarizerChain struct {
	strategies []SummaryStrategy
	cache      *lru.Cache[string, string]
	log        *logrus.Logger
}

// NewSummarizerChain builds the default chain: OpenAI, then xAI, then the
// local template. Unconfigured clients fail fast and fall through.
func NewSummarizerChain(config domain.ExternalAPIConfig, logger *logrus.Logger) (*SummarizerChain, error) {
	return NewSummarizerChainWith(logger,
		NewOpenAISummarizer(config.OpenAI, logger),
		NewXAISummarizer(config.XAI, logger),
		TemplateSummarizer{},
	)
}

// NewSummarizerChainWith builds a chain over explicit strategies.
func NewSummarizerChainWith(logger *logrus.Logger, strategies ...SummaryStrategy) (*SummarizerChain, error) {
	cache, err := lru.New[string, string](summaryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating summary cache: %w", err)
	}
	return &SummarizerChain{
		strategies: strategies,
		cache:      cache,
		log:        logger,
	}, nil
}

// Summarize runs the strategy chain. It never returns an error: with all
// external strategies down the template fallback still answers.
func (c *SummarizerChain) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return noTextMessage
	}

	key := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
	if summary, ok := c.cache.Get(key); ok {
		return summary
	}

	for _, strategy := range c.strategies {
		summary, err := strategy.Summarize(ctx, text)
		if err != nil {
			c.log.WithError(err).WithField("strategy", strategy.Name()).
				Debug("Summary strategy failed, trying next")
			continue
		}
		c.cache.Add(key, summary)
		return summary
	}

	// Unreachable with the template strategy in the chain, but a custom
	// chain may consist of external strategies only.
	return noTextMessage
}
