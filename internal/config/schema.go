package config

// Config is the top-level YAML/TOML structure.
type Config struct {
	Server  ServerConf  `yaml:"server" toml:"server"`
	Backend BackendConf `yaml:"backend" toml:"backend"`
	Feed    FeedConf    `yaml:"feed" toml:"feed"`
	Render  RenderConf  `yaml:"render" toml:"render"`
	Filters FiltersConf `yaml:"filters" toml:"filters"`
}

// ServerConf holds the HTTP listener settings.
type ServerConf struct {
	Addr              string   `yaml:"addr" toml:"addr" validate:"required"`
	ReadTimeoutMs     int      `yaml:"read_timeout_ms" toml:"read_timeout_ms" validate:"gt=0"`
	WriteTimeoutMs    int      `yaml:"write_timeout_ms" toml:"write_timeout_ms" validate:"gte=0"`
	ShutdownTimeoutMs int      `yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" validate:"gt=0"`
	AllowedOrigins    []string `yaml:"allowed_origins" toml:"allowed_origins" validate:"dive,required"`
}

// BackendConf points at the lead-hunting API that serves the graph.
type BackendConf struct {
	BaseURL        string      `yaml:"base_url" toml:"base_url" validate:"required,url"`
	GraphPath      string      `yaml:"graph_path" toml:"graph_path" validate:"required,startswith=/"`
	TimeoutMs      int         `yaml:"timeout_ms" toml:"timeout_ms" validate:"gt=0"`
	RefreshOnStart bool        `yaml:"refresh_on_start" toml:"refresh_on_start"`
	Breaker        BreakerConf `yaml:"breaker" toml:"breaker"`
}

// BreakerConf tunes the circuit breaker around backend fetches.
type BreakerConf struct {
	MaxRequests      uint32  `yaml:"max_requests" toml:"max_requests" validate:"gt=0"`
	IntervalMs       int     `yaml:"interval_ms" toml:"interval_ms" validate:"gte=0"`
	TimeoutMs        int     `yaml:"timeout_ms" toml:"timeout_ms" validate:"gt=0"`
	FailureThreshold float64 `yaml:"failure_threshold" toml:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32  `yaml:"min_requests" toml:"min_requests" validate:"gt=0"`
}

// FeedConf configures the live event feed subscription.
type FeedConf struct {
	Enabled     bool     `yaml:"enabled" toml:"enabled"`
	URL         string   `yaml:"url" toml:"url" validate:"omitempty,url"`
	Triggers    []string `yaml:"triggers" toml:"triggers" validate:"dive,required"`
	ReconnectMs int      `yaml:"reconnect_ms" toml:"reconnect_ms" validate:"gt=0"`
	QueueSize   int      `yaml:"queue_size" toml:"queue_size" validate:"gte=0"`
}

// RenderConf holds glyph sizes, palette and label rules. It is the only
// section applied on hot reload.
type RenderConf struct {
	StrategySize  float64           `yaml:"strategy_size" toml:"strategy_size" validate:"gt=0"`
	CompanySize   float64           `yaml:"company_size" toml:"company_size" validate:"gt=0"`
	EvidenceSize  float64           `yaml:"evidence_size" toml:"evidence_size" validate:"gt=0"`
	LessonSize    float64           `yaml:"lesson_size" toml:"lesson_size" validate:"gt=0"`
	StrategyColor string            `yaml:"strategy_color" toml:"strategy_color" validate:"required,hexcolor"`
	EvidenceColor string            `yaml:"evidence_color" toml:"evidence_color" validate:"required,hexcolor"`
	LessonColor   string            `yaml:"lesson_color" toml:"lesson_color" validate:"required,hexcolor"`
	CompanyColors map[string]string `yaml:"company_colors" toml:"company_colors" validate:"dive,hexcolor"`
	RingColor     string            `yaml:"ring_color" toml:"ring_color" validate:"required,hexcolor"`
	RingGap       float64           `yaml:"ring_gap" toml:"ring_gap" validate:"gte=0"`
	RingWidth     float64           `yaml:"ring_width" toml:"ring_width" validate:"gt=0"`
	LabelMinScale float64           `yaml:"label_min_scale" toml:"label_min_scale" validate:"gte=0"`
	LabelMaxRunes int               `yaml:"label_max_runes" toml:"label_max_runes" validate:"gte=0"`
	FontSize      float64           `yaml:"font_size" toml:"font_size" validate:"gt=0"`
	LabelColor    string            `yaml:"label_color" toml:"label_color" validate:"required,hexcolor"`
}

// FiltersConf sets the classifications active at start-up and after a reset.
// A nil list means all four.
type FiltersConf struct {
	Active []string `yaml:"active" toml:"active"`
}
