package strategyconfig

import (
	"time"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/internal/universe"
)

// Failure policies for per-symbol fetch errors
const (
	OnFailureZero  = "zero"
	OnFailureAbort = "abort"
)

// Config는 후보 선정 전략의 전체 설정
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Selection  Selection  `yaml:"selection" json:"selection"`
	Collection Collection `yaml:"collection" json:"collection"`
	Schedule   Schedule   `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone" validate:"required"`
}

// Universe 랭킹 대상 종목 (순서 = 동점 처리 순서)
type Universe struct {
	Symbols []string `yaml:"symbols" json:"symbols" validate:"required,min=1,dive,required"`
}

// Selection 랭킹/선정
type Selection struct {
	TopK    int      `yaml:"top_k" json:"top_k" validate:"min=0"`
	Metrics []string `yaml:"metrics" json:"metrics" validate:"required,min=1,dive,required"`
}

// Collection 지표 수집
type Collection struct {
	Workers              int           `yaml:"workers" json:"workers" validate:"min=1,max=64"`
	RequestsPerSecond    float64       `yaml:"requests_per_second" json:"requests_per_second" validate:"gt=0,lte=100"`
	DividendLookbackDays int           `yaml:"dividend_lookback_days" json:"dividend_lookback_days" validate:"min=1,max=3650"`
	VolumeSessions       int           `yaml:"volume_sessions" json:"volume_sessions" validate:"min=1,max=60"`
	CacheTTL             time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	OnFailure            string        `yaml:"on_failure" json:"on_failure" validate:"oneof=zero abort"`
}

// Abort reports whether the first fetch failure should fail the run
func (c Collection) Abort() bool {
	return c.OnFailure == OnFailureAbort
}

// Schedule 주기 실행
type Schedule struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Cron    string `yaml:"cron" json:"cron" validate:"required_if=Enabled true"`
}

// Default mirrors the built-in selection: 48 large caps, top 10, three equal-weight metrics
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "us_largecap_v1",
			Version:    "1.0.0",
			Timezone:   "America/New_York",
		},
		Universe: Universe{
			Symbols: universe.DefaultSymbols(),
		},
		Selection: Selection{
			TopK:    10,
			Metrics: contracts.DefaultRankingMetrics(),
		},
		Collection: Collection{
			Workers:              4,
			RequestsPerSecond:    10,
			DividendLookbackDays: 365,
			VolumeSessions:       7,
			CacheTTL:             10 * time.Minute,
			OnFailure:            OnFailureZero,
		},
		Schedule: Schedule{
			Enabled: false,
			// 미국 장 마감 후 (초 필드 포함)
			Cron: "0 30 16 * * 1-5",
		},
	}
}

// applyDefaults fills omitted collection/meta fields from Default()
func applyDefaults(cfg *Config) {
	d := Default()

	if cfg.Meta.Timezone == "" {
		cfg.Meta.Timezone = d.Meta.Timezone
	}
	if cfg.Collection.Workers == 0 {
		cfg.Collection.Workers = d.Collection.Workers
	}
	if cfg.Collection.RequestsPerSecond == 0 {
		cfg.Collection.RequestsPerSecond = d.Collection.RequestsPerSecond
	}
	if cfg.Collection.DividendLookbackDays == 0 {
		cfg.Collection.DividendLookbackDays = d.Collection.DividendLookbackDays
	}
	if cfg.Collection.VolumeSessions == 0 {
		cfg.Collection.VolumeSessions = d.Collection.VolumeSessions
	}
	if cfg.Collection.OnFailure == "" {
		cfg.Collection.OnFailure = d.Collection.OnFailure
	}
}
