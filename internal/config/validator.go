package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gyaneshwarpardhi/huntgraph/internal/feed"
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
)

var validate = validator.New()

// knownEventKinds are the feed kinds the backend is known to publish.
var knownEventKinds = feed.NewTriggerSet(
	feed.KindStrategyStored,
	feed.KindMarketResearchDone,
	feed.KindPivotEmailDrafted,
	feed.KindOutageReprioritized,
	feed.KindGraphReset,
	feed.KindValidationComplete,
	feed.KindScoutStatusChange,
	feed.KindAgentError,
)

// Validate checks the config for:
//   - field-level constraints declared in struct tags
//   - a ws/wss feed URL when the feed is enabled
//   - known classification names in filters and company colors
//   - known event kinds in the trigger list
//
// Every problem is reported in a single error.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, formatFieldError(fe))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if cfg.Feed.Enabled {
		switch u, err := url.Parse(cfg.Feed.URL); {
		case cfg.Feed.URL == "":
			errs = append(errs, "feed.url: required when feed is enabled")
		case err != nil:
			errs = append(errs, fmt.Sprintf("feed.url: %s", err))
		case u.Scheme != "ws" && u.Scheme != "wss":
			errs = append(errs, fmt.Sprintf("feed.url: scheme must be ws or wss, got %q", u.Scheme))
		}
	}
	for i, kind := range cfg.Feed.Triggers {
		if kind != "" && !knownEventKinds.Triggers(kind) {
			errs = append(errs, fmt.Sprintf("feed.triggers[%d]: unknown event kind %q", i, kind))
		}
	}
	for i, name := range cfg.Filters.Active {
		if _, ok := graph.LookupClassification(name); !ok {
			errs = append(errs, fmt.Sprintf("filters.active[%d]: unknown classification %q", i, name))
		}
	}
	for name := range cfg.Render.CompanyColors {
		if _, ok := graph.LookupClassification(name); !ok {
			errs = append(errs, fmt.Sprintf("render.company_colors: unknown classification %q", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", field)
	case "url":
		return fmt.Sprintf("%s: %q is not a valid URL", field, fe.Value())
	case "hexcolor":
		return fmt.Sprintf("%s: %q is not a hex color", field, fe.Value())
	case "startswith":
		return fmt.Sprintf("%s: must start with %q", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %q check", field, fe.Tag())
	}
}

// fieldPath turns "Config.Backend.Breaker.MaxRequests" into
// "backend.breaker.max_requests".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || (nextLower && runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
