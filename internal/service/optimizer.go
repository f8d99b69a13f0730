package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
)

var (
	powerWords = []string{
		"Exclusive", "Limited", "Urgent", "Important", "New", "Breakthrough",
		"Amazing", "Instant", "Quick", "Easy", "Free", "Guaranteed",
	}
	emojis = []string{"🚀", "⚡", "✨", "🎯", "💡", "🔥", "⭐", "💎"}

	strategies = []string{
		"Power word injection with emoji enhancement",
		"Urgency-based subject line optimization",
		"Engagement-driven content restructuring",
		"Personalization with emotional trigger",
		"Action-oriented language optimization",
	}
)

const (
	emailFooter   = "\n\n✨ This message has been AI-optimized for maximum engagement."
	smsMaxRunes   = 100
	pushMaxRunes  = 150
	minConfidence = 0.75
	confidenceGap = 0.24
)

// ContentOptimizer rewrites a subject and message for the channel they will be sent on
type ContentOptimizer interface {
	Optimize(ctx context.Context, req model.OptimizationRequest) (*model.OptimizationResponse, error)
}

type contentOptimizer struct {
	mu  sync.Mutex
	rng *rand.Rand
	l   *slog.Logger
}

// NewContentOptimizer creates an optimizer that draws its choices from rng
func NewContentOptimizer(rng *rand.Rand, logger *slog.Logger) ContentOptimizer {
	return &contentOptimizer{
		rng: rng,
		l:   logger.With("layer", "service", "component", "contentOptimizer"),
	}
}

func (o *contentOptimizer) Optimize(ctx context.Context, req model.OptimizationRequest) (*model.OptimizationResponse, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return nil, appErr.NewValidation("subject is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, appErr.NewValidation("message is required")
	}
	channel := model.Channel(strings.ToUpper(string(req.Channel)))

	o.mu.Lock()
	powerWord := powerWords[o.rng.Intn(len(powerWords))]
	emoji := emojis[o.rng.Intn(len(emojis))]
	strategy := strategies[o.rng.Intn(len(strategies))]
	confidence := minConfidence + o.rng.Float64()*confidenceGap
	o.mu.Unlock()

	resp := &model.OptimizationResponse{
		OriginalSubject:      req.Subject,
		OptimizedSubject:     optimizeSubject(req.Subject, channel, powerWord, emoji),
		OriginalMessage:      req.Message,
		EnhancedMessage:      enhanceMessage(req.Message, channel),
		OptimizationStrategy: strategy,
		ConfidenceScore:      math.Round(confidence*100) / 100,
	}

	o.l.InfoContext(ctx, "Optimization complete",
		slog.String("channel", string(channel)),
		slog.String("original", req.Subject),
		slog.String("optimized", resp.OptimizedSubject))
	return resp, nil
}

func optimizeSubject(subject string, channel model.Channel, powerWord, emoji string) string {
	switch channel {
	case model.ChannelEmail:
		return fmt.Sprintf("%s %s: %s", emoji, powerWord, subject)
	case model.ChannelSMS:
		return fmt.Sprintf("[%s] %s", powerWord, subject)
	case model.ChannelPush:
		return fmt.Sprintf("%s %s", emoji, subject)
	}
	return fmt.Sprintf("%s %s", powerWord, subject)
}

func enhanceMessage(message string, channel model.Channel) string {
	switch channel {
	case model.ChannelEmail:
		return message + emailFooter
	case model.ChannelSMS:
		return truncate(message, smsMaxRunes)
	case model.ChannelPush:
		return truncate(message, pushMaxRunes)
	}
	return message
}

// truncate shortens s to max runes, the last three replaced by an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
