// Package coach turns a learner's VARK profile and recent results into
// study tips. With an LLM configured the tips are generated; otherwise, or
// when generation fails, they come from the built-in catalog.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/stylequiz/internal/llm"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/vark"
)

// Source says where a set of tips came from.
type Source string

const (
	SourceLLM     Source = "llm"
	SourceCatalog Source = "catalog"
)

// SubjectScore is one subject's recent accuracy, 0..100.
type SubjectScore struct {
	Subject  string
	Accuracy int
}

// TipsInput is what the tips are personalised on. Style may be empty, in
// which case the distribution's dominant style is used.
type TipsInput struct {
	Distribution vark.Distribution
	Style        vark.Style
	Recent       []SubjectScore
}

// Tips is the advice shown to the learner.
type Tips struct {
	Style    vark.Style
	Headline string
	Items    []string
	Source   Source
}

// ErrNoProfile means there is no style to base tips on.
var ErrNoProfile = errors.New("coach: no learning style profile")

// Config tunes generation.
type Config struct {
	MaxTips     int
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the settings used by the CLI and TUI.
func DefaultConfig() Config {
	return Config{MaxTips: 5, MaxTokens: 600, Temperature: 0.4, Timeout: 20 * time.Second}
}

// Service produces tips.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets where generation failures are reported.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// NewService returns a Service. A nil provider means catalog tips only.
func NewService(provider llm.Provider, opts ...Option) *Service {
	s := &Service{provider: provider, cfg: DefaultConfig(), log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tips returns advice for in. Generation failures fall back to the catalog
// and are logged rather than returned; the only error is ErrNoProfile.
func (s *Service) Tips(ctx context.Context, in TipsInput) (Tips, error) {
	style := in.Style
	if style == "" && in.Distribution.Sum() > 0 {
		style = in.Distribution.Dominant()
	}
	if !style.Valid() {
		return Tips{}, ErrNoProfile
	}

	if s.provider != nil {
		tips, err := s.generate(ctx, style, in)
		if err == nil {
			return tips, nil
		}
		s.log.WarnContext(ctx, "study tips generation failed, using catalog", "style", style, "error", err)
	}
	return catalogTips(style), nil
}

func catalogTips(style vark.Style) Tips {
	return Tips{
		Style:    style,
		Headline: vark.Description(style),
		Items:    vark.Recommendations(style),
		Source:   SourceCatalog,
	}
}

type tipsOutput struct {
	Headline string   `json:"headline"`
	Tips     []string `json:"tips"`
}

func (s *Service) generate(ctx context.Context, style vark.Style, in TipsInput) (Tips, error) {
	ctx = llm.WithPurpose(ctx, "study-tips")
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req := llm.UserMessage(systemPrompt, userPrompt(style, in, s.cfg.MaxTips))
	req.Schema = tipsSchema(s.cfg.MaxTips)
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return Tips{}, fmt.Errorf("generate tips: %w", err)
	}
	var out tipsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Tips{}, fmt.Errorf("parse tips: %w", err)
	}

	items := make([]string, 0, len(out.Tips))
	for _, t := range out.Tips {
		if t = strings.TrimSpace(t); t != "" {
			items = append(items, t)
		}
	}
	if len(items) == 0 {
		return Tips{}, errors.New("generate tips: model returned no tips")
	}
	headline := strings.TrimSpace(out.Headline)
	if headline == "" {
		headline = vark.Description(style)
	}
	return Tips{Style: style, Headline: headline, Items: items, Source: SourceLLM}, nil
}
