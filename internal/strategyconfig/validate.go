package strategyconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/scheduler"
	"github.com/wonny/shortlist/internal/universe"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CronParser is the scheduler's parser, so a file that validates also schedules
var CronParser = scheduler.SpecParser

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 에러 필드명을 YAML 키로 표시
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags first, then cross-field rules.
// 실패 시 ValidationError 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{fieldPath(fe.Namespace()), tagMessage(fe)}
		}
		return err
	}

	// === Meta ===
	if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
		return ValidationError{"meta.timezone", err.Error()}
	}

	// === Universe ===
	if err := universe.Validate(cfg.Universe.Symbols); err != nil {
		return ValidationError{"universe.symbols", err.Error()}
	}

	// === Selection ===
	seen := make(map[string]bool, len(cfg.Selection.Metrics))
	for _, m := range cfg.Selection.Metrics {
		if !contracts.IsRankableMetric(m) {
			return ValidationError{"selection.metrics", fmt.Sprintf("unknown metric %q", m)}
		}
		if seen[m] {
			return ValidationError{"selection.metrics", fmt.Sprintf("duplicate metric %q", m)}
		}
		seen[m] = true
	}

	// === Collection ===
	if cfg.Collection.CacheTTL < 0 {
		return ValidationError{"collection.cache_ttl", "must be >= 0"}
	}

	// === Schedule ===
	if cfg.Schedule.Cron != "" {
		if _, err := CronParser.Parse(cfg.Schedule.Cron); err != nil {
			return ValidationError{"schedule.cron", err.Error()}
		}
	}

	return nil
}

// fieldPath drops the root struct name: "Config.collection.workers" → "collection.workers"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "required"
	case "min":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
