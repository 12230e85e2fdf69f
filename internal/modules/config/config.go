package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// SMCConfig — все пороги пайплайна. Передаётся в анализатор явно,
// никаких глобальных синглтонов.
type SMCConfig struct {
	MinCandles   int     `yaml:"min_candles"`
	Lookback     int     `yaml:"lookback"`
	TolerancePct float64 `yaml:"tolerance_pct"`

	SweepCheckLastN int `yaml:"sweep_check_last_n"`

	DispLookAhead  int     `yaml:"disp_look_ahead"`
	DispBodyFactor float64 `yaml:"disp_body_factor"`

	FVGRadius      int     `yaml:"fvg_radius"`
	FVGMinWidthPct float64 `yaml:"fvg_min_width_pct"`
	FVGMaxWidthPct float64 `yaml:"fvg_max_width_pct"`
	FVGMaxDistPct  float64 `yaml:"fvg_max_dist_pct"`

	RRTP1 float64 `yaml:"rr_tp1"`
	RRTP2 float64 `yaml:"rr_tp2"`
	RRTP3 float64 `yaml:"rr_tp3"`

	ATRPeriod int     `yaml:"atr_period"`
	SLBandMin float64 `yaml:"sl_band_min"` // проценты: 0.35 == 0.35%
	SLBandMax float64 `yaml:"sl_band_max"`
	GoodRRMin float64 `yaml:"good_rr_min"`
}

// Config ...
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	DB string `yaml:"db_dsn"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Binance struct {
		StreamURL string `yaml:"stream_url"`
		RestURL   string `yaml:"rest_url"`
	} `yaml:"binance"`

	// Рынок / вселенная пар. Интервалы задаются только через env
	// (REFRESH_PAIRS и т.п.), yaml.v2 не парсит "4h" в Duration.
	Timeframe     string  `yaml:"timeframe"`
	MaxPairs      int     `yaml:"max_pairs"`
	MinVolumeUSDT float64 `yaml:"min_volume_usdt"`
	RefreshPairs  time.Duration

	// Буфер свечей и раннер
	MaxCandles        int `yaml:"max_candles"`
	CooldownPerSymbol time.Duration

	// Минимальный тир для отправки: "B" | "A" | "A+"
	MinTier string `yaml:"min_tier"`

	// Лог сигналов
	SignalLogDir       string `yaml:"signal_log_dir"`
	SignalLogRetention int    `yaml:"signal_log_retention_days"`

	// HTF-провайдер
	HTFCacheTTL        time.Duration
	HTFCacheMaxEntries int `yaml:"htf_cache_max_entries"`
	HTFKlineLimit      int `yaml:"htf_kline_limit"`

	// health-пробы
	HealthAddr string `yaml:"health_addr"`

	SMC SMCConfig `yaml:"smc"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Timeframe:     getenvDefault("TIMEFRAME", "5m"),
		MaxPairs:      intFromEnv("MAX_PAIRS", 30),
		MinVolumeUSDT: floatFromEnv("MIN_VOLUME_USDT", 50_000_000),
		RefreshPairs:  durationFromEnv("REFRESH_PAIRS", "4h"),

		MaxCandles:        intFromEnv("MAX_CANDLES", 300),
		CooldownPerSymbol: durationFromEnv("COOLDOWN_PER_SYMBOL", "1h"),

		MinTier: getenvDefault("MIN_TIER", "A"),

		SignalLogDir:       getenvDefault("SIGNAL_LOG_DIR", "logs"),
		SignalLogRetention: intFromEnv("SIGNAL_LOG_RETENTION_DAYS", 14),

		HTFCacheTTL:        durationFromEnv("HTF_CACHE_TTL", "3m"),
		HTFCacheMaxEntries: intFromEnv("HTF_CACHE_MAX_ENTRIES", 128),
		HTFKlineLimit:      intFromEnv("HTF_KLINE_LIMIT", 150),

		HealthAddr: getenvDefault("HEALTH_ADDR", ":8080"),

		SMC: DefaultSMCConfig(),
	}
	config.Binance.StreamURL = getenvDefault("BINANCE_STREAM_URL", "wss://fstream.binance.com/stream")
	config.Binance.RestURL = getenvDefault("BINANCE_REST_URL", "https://fapi.binance.com")

	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	return &config, nil
}

// DefaultSMCConfig — дефолтные пороги стратегии.
func DefaultSMCConfig() SMCConfig {
	return SMCConfig{
		MinCandles:   30,
		Lookback:     40,
		TolerancePct: 0.001,

		SweepCheckLastN: 4,

		DispLookAhead:  2,
		DispBodyFactor: 1.6,

		FVGRadius:      2,
		FVGMinWidthPct: 0.0008,
		FVGMaxWidthPct: 0.008,
		FVGMaxDistPct:  0.006,

		RRTP1: 1.2,
		RRTP2: 2.0,
		RRTP3: 3.0,

		ATRPeriod: 14,
		SLBandMin: 0.35,
		SLBandMax: 1.50,
		GoodRRMin: 1.8,
	}
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
