package knowledge

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/masterversa/acharya/internal/infra"
	"github.com/masterversa/acharya/internal/observability"
)

// Generator produces text for a prompt. Implementations live in
// internal/generation; tests use fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the structured payload every knowledge operation returns.
// Validation and upstream failures are reported inline as error results;
// operations never raise past this boundary.
type Result struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// IsError reports whether the result is an error payload.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func errorResult(message string) Result {
	return Result{Status: StatusError, Message: message}
}

func successResult(data map[string]any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// DefaultMeditationMinutes is the duration callers should use when the
// user did not ask for a specific one. The service itself never defaults
// the duration; zero is rejected like any other out-of-range value.
const DefaultMeditationMinutes = 10

// Meditation duration bounds, in minutes.
const (
	minMeditationMinutes = 1
	maxMeditationMinutes = 60

	defaultMeditationFocus = "mindfulness"
	defaultPracticeLevel   = "beginner"
	defaultCategory        = "general"
)

// ServiceConfig configures a knowledge Service.
type ServiceConfig struct {
	Generator Generator
	// TTL is the cache entry lifetime (default infra.DefaultTTL).
	TTL time.Duration
	// CacheSize bounds the cache (0 = unbounded).
	CacheSize int
	// Now overrides the clock, for tests. Drives both cache expiry and
	// the daily-insight date key.
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Service answers knowledge queries, memoizing generative calls per query
// key. Concurrent misses for the same key issue a single upstream call.
type Service struct {
	gen     Generator
	cache   *infra.TTLCache[string, Result]
	now     func() time.Time
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		gen: cfg.Generator,
		cache: infra.NewTTLCache[string, Result](infra.CacheConfig{
			TTL:     cfg.TTL,
			MaxSize: cfg.CacheSize,
			Now:     cfg.Now,
		}),
		now:     cfg.Now,
		logger:  logger.With("component", "knowledge"),
		metrics: cfg.Metrics,
	}
}

// Close releases cache resources.
func (s *Service) Close() {
	s.cache.Stop()
}

// CacheStats exposes cache counters for diagnostics.
func (s *Service) CacheStats() infra.CacheStats {
	return s.cache.Stats()
}

// GetInformation returns information about a religion, optionally narrowed
// by category and a specific question.
func (s *Service) GetInformation(ctx context.Context, religion, category, query string) Result {
	religion = strings.ToLower(strings.TrimSpace(religion))
	if religion == "" {
		return errorResult("Religion identifier is required")
	}
	if _, ok := Religions[religion]; !ok {
		return errorResult("Unknown religion: " + religion +
			". Available options are: " + strings.Join(ReligionNames(), ", "))
	}
	if category == "" {
		category = defaultCategory
	}

	key := buildKey("religion", religion, category, query)
	return s.fetch(ctx, key, informationPrompt(religion, category, query), func(content string) map[string]any {
		return map[string]any{
			"religion": religion,
			"category": category,
			"query":    query,
			"content":  content,
		}
	})
}

// GetPerspective returns an explanation of a philosophical tradition,
// optionally focused on a topic.
func (s *Service) GetPerspective(ctx context.Context, philosophy, topic string) Result {
	philosophy = strings.ToLower(strings.TrimSpace(philosophy))
	if philosophy == "" {
		return errorResult("Philosophy identifier is required")
	}
	if _, ok := Philosophies[philosophy]; !ok {
		return errorResult("Unknown philosophy: " + philosophy +
			". Available options are: " + strings.Join(PhilosophyNames(), ", "))
	}

	key := buildKey("philosophy", philosophy, "", topic)
	return s.fetch(ctx, key, perspectivePrompt(philosophy, topic), func(content string) map[string]any {
		return map[string]any{
			"philosophy": philosophy,
			"topic":      topic,
			"content":    content,
		}
	})
}

// Compare compares two religions on an aspect. The cache key is built over
// the sorted pair, so argument order does not fragment the cache.
func (s *Service) Compare(ctx context.Context, religion1, religion2, aspect string) Result {
	religion1 = strings.ToLower(strings.TrimSpace(religion1))
	religion2 = strings.ToLower(strings.TrimSpace(religion2))
	if religion1 == "" || religion2 == "" {
		return errorResult("Both religions are required for comparison")
	}
	if _, ok := Religions[religion1]; !ok {
		return errorResult("Unknown religion: " + religion1)
	}
	if _, ok := Religions[religion2]; !ok {
		return errorResult("Unknown religion: " + religion2)
	}
	if aspect == "" {
		aspect = "general"
	}

	key := buildSetKey("comparison", []string{religion1, religion2}, aspect)
	return s.fetch(ctx, key, comparisonPrompt(religion1, religion2, aspect), func(content string) map[string]any {
		return map[string]any{
			"religions":  map[string]any{"first": religion1, "second": religion2},
			"aspect":     aspect,
			"comparison": content,
		}
	})
}

// DailyInsight returns the insight of the day, optionally scoped to a
// tradition and theme. The calendar date is part of the key, so the entry
// is logically invalidated at midnight whatever its TTL.
func (s *Service) DailyInsight(ctx context.Context, tradition, theme string) Result {
	tradition = strings.ToLower(strings.TrimSpace(tradition))
	today := s.now().Format("2006-01-02")

	key := buildDailyKey(s.now(), tradition, theme)
	return s.fetch(ctx, key, dailyInsightPrompt(tradition, theme), func(content string) map[string]any {
		return map[string]any{
			"date":         today,
			"tradition":    tradition,
			"theme":        theme,
			"full_insight": content,
		}
	})
}

// MeditationGuide returns a guided meditation script. Duration must be
// within [1, 60] minutes.
func (s *Service) MeditationGuide(ctx context.Context, tradition string, duration int, focus string) Result {
	tradition = strings.ToLower(strings.TrimSpace(tradition))
	if duration < minMeditationMinutes || duration > maxMeditationMinutes {
		return errorResult("Meditation duration must be between " +
			strconv.Itoa(minMeditationMinutes) + " and " + strconv.Itoa(maxMeditationMinutes) + " minutes")
	}
	if focus == "" {
		focus = defaultMeditationFocus
	}

	key := buildKey("meditation", strconv.Itoa(duration), focus, tradition)
	return s.fetch(ctx, key, meditationPrompt(tradition, duration, focus), func(content string) map[string]any {
		return map[string]any{
			"tradition": tradition,
			"duration":  duration,
			"focus":     focus,
			"guide":     content,
		}
	})
}

// InterfaithDialogue generates a dialogue between representatives of
// several traditions. With no participants given, a default set of major
// traditions is used; explicitly named participants are filtered against
// the taxonomy and at least two valid ones are required.
func (s *Service) InterfaithDialogue(ctx context.Context, topic string, participants []string) Result {
	if strings.TrimSpace(topic) == "" {
		return errorResult("A topic is required for interfaith dialogue")
	}

	var valid []string
	if len(participants) == 0 {
		valid = append(valid, defaultDialogueParticipants...)
	} else {
		for _, p := range participants {
			p = strings.ToLower(strings.TrimSpace(p))
			if _, ok := Religions[p]; ok {
				valid = append(valid, p)
			}
		}
		if len(valid) < 2 {
			return errorResult("At least two valid religions are required for interfaith dialogue")
		}
	}

	key := buildSetKey("dialogue", valid, topic)
	return s.fetch(ctx, key, dialoguePrompt(topic, valid), func(content string) map[string]any {
		return map[string]any{
			"topic":     topic,
			"religions": valid,
			"dialogue":  content,
		}
	})
}

// PracticeGuide returns a guide for a spiritual practice at a given
// experience level. Unrecognized levels normalize to beginner.
func (s *Service) PracticeGuide(ctx context.Context, practice, tradition, level string) Result {
	if strings.TrimSpace(practice) == "" {
		return errorResult("A practice identifier is required")
	}
	tradition = strings.ToLower(strings.TrimSpace(tradition))
	level = strings.ToLower(strings.TrimSpace(level))
	if !practiceLevels[level] {
		level = defaultPracticeLevel
	}

	key := buildKey("practice", practice, level, tradition)
	return s.fetch(ctx, key, practicePrompt(practice, tradition, level), func(content string) map[string]any {
		return map[string]any{
			"practice":  practice,
			"tradition": tradition,
			"level":     level,
			"guide":     content,
		}
	})
}

// AvailableReligions lists the religion taxonomy.
func (s *Service) AvailableReligions() Result {
	return successResult(map[string]any{"religions": ReligionNames()})
}

// AvailablePhilosophies lists the philosophy taxonomy.
func (s *Service) AvailablePhilosophies() Result {
	return successResult(map[string]any{"philosophies": PhilosophyNames()})
}

// fetch resolves key through the cache, generating on miss. Generation
// failures become error results and are not cached, so the next call
// retries.
func (s *Service) fetch(ctx context.Context, key, prompt string, shape func(content string) map[string]any) Result {
	generated := false
	result, err := s.cache.GetOrLoad(key, func() (Result, error) {
		generated = true
		start := time.Now()
		content, err := s.gen.Generate(ctx, prompt)
		if s.metrics != nil {
			s.metrics.GenerationDuration.WithLabelValues(s.providerName()).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			return Result{}, err
		}
		return successResult(shape(content)), nil
	})

	if s.metrics != nil {
		outcome := "hit"
		if generated {
			outcome = "miss"
		}
		s.metrics.CacheCounter.WithLabelValues(outcome).Inc()
	}

	if err != nil {
		s.logger.Error("generation failed", "key", key, "error", err)
		if s.metrics != nil {
			s.metrics.ErrorCounter.WithLabelValues("generation", "upstream").Inc()
		}
		return errorResult("Error retrieving information: " + err.Error())
	}
	return result
}

func (s *Service) providerName() string {
	if named, ok := s.gen.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}
