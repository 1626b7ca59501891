package config

import (
	"time"

	"github.com/gyaneshwarpardhi/huntgraph/internal/backend"
	"github.com/gyaneshwarpardhi/huntgraph/internal/feed"
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/render"
	"github.com/gyaneshwarpardhi/huntgraph/internal/viewstate"
)

// Default returns a config that works against a backend on localhost:8000.
func Default() *Config {
	style := render.DefaultStyle()
	companyColors := make(map[string]string, len(style.CompanyColors))
	for c, col := range style.CompanyColors {
		companyColors[string(c)] = string(col)
	}
	breaker := backend.DefaultBreakerOptions()

	return &Config{
		Server: ServerConf{
			Addr:              ":8080",
			ReadTimeoutMs:     10000,
			WriteTimeoutMs:    30000,
			ShutdownTimeoutMs: 15000,
			AllowedOrigins:    []string{"http://localhost:3000"},
		},
		Backend: BackendConf{
			BaseURL:        "http://localhost:8000",
			GraphPath:      "/api/graph",
			TimeoutMs:      10000,
			RefreshOnStart: true,
			Breaker: BreakerConf{
				MaxRequests:      breaker.MaxRequests,
				IntervalMs:       int(breaker.Interval / time.Millisecond),
				TimeoutMs:        int(breaker.Timeout / time.Millisecond),
				FailureThreshold: breaker.FailureThreshold,
				MinRequests:      breaker.MinRequests,
			},
		},
		Feed: FeedConf{
			Enabled:     true,
			URL:         "ws://localhost:8000/api/ws/feed",
			Triggers:    feed.DefaultTriggers().List(),
			ReconnectMs: 3000,
			QueueSize:   4,
		},
		Render: RenderConf{
			StrategySize:  style.StrategySize,
			CompanySize:   style.CompanySize,
			EvidenceSize:  style.EvidenceSize,
			LessonSize:    style.LessonSize,
			StrategyColor: string(style.StrategyColor),
			EvidenceColor: string(style.EvidenceColor),
			LessonColor:   string(style.LessonColor),
			CompanyColors: companyColors,
			RingColor:     string(style.RingColor),
			RingGap:       style.RingGap,
			RingWidth:     style.RingWidth,
			LabelMinScale: style.LabelMinScale,
			LabelMaxRunes: style.LabelMaxRunes,
			FontSize:      style.FontSize,
			LabelColor:    string(style.LabelColor),
		},
	}
}

// -----------------------------------------------------------------------
// Conversions into component options
// -----------------------------------------------------------------------

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// BackendOptions maps the backend section onto backend.Options.
func (c BackendConf) BackendOptions() backend.Options {
	return backend.Options{
		BaseURL:   c.BaseURL,
		GraphPath: c.GraphPath,
		Timeout:   ms(c.TimeoutMs),
		Breaker: backend.BreakerOptions{
			MaxRequests:      c.Breaker.MaxRequests,
			Interval:         ms(c.Breaker.IntervalMs),
			Timeout:          ms(c.Breaker.TimeoutMs),
			FailureThreshold: c.Breaker.FailureThreshold,
			MinRequests:      c.Breaker.MinRequests,
		},
	}
}

// FeedOptions maps the feed section onto feed.Options.
func (c FeedConf) FeedOptions() feed.Options {
	return feed.Options{
		URL:            c.URL,
		Triggers:       feed.NewTriggerSet(c.Triggers...),
		ReconnectDelay: ms(c.ReconnectMs),
		QueueSize:      c.QueueSize,
	}
}

// Style maps the render section onto render.Style. Company colors missing
// from the config keep their defaults.
func (c RenderConf) Style() render.Style {
	s := render.DefaultStyle()
	s.StrategySize = c.StrategySize
	s.CompanySize = c.CompanySize
	s.EvidenceSize = c.EvidenceSize
	s.LessonSize = c.LessonSize
	s.StrategyColor = render.Color(c.StrategyColor)
	s.EvidenceColor = render.Color(c.EvidenceColor)
	s.LessonColor = render.Color(c.LessonColor)
	for name, col := range c.CompanyColors {
		if cls, ok := graph.LookupClassification(name); ok {
			s.CompanyColors[cls] = render.Color(col)
		}
	}
	s.RingColor = render.Color(c.RingColor)
	s.RingGap = c.RingGap
	s.RingWidth = c.RingWidth
	s.LabelMinScale = c.LabelMinScale
	s.LabelMaxRunes = c.LabelMaxRunes
	s.FontSize = c.FontSize
	s.LabelColor = render.Color(c.LabelColor)
	return s
}

// InitialState returns the UI state the session starts from.
func (c FiltersConf) InitialState() (viewstate.State, error) {
	if c.Active == nil {
		return viewstate.Initial(), nil
	}
	active, err := graph.ParseClassificationSet(c.Active)
	if err != nil {
		return viewstate.State{}, err
	}
	return viewstate.WithActive(active), nil
}
