package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"smc_bot/internal/market"
	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
	smc "smc_bot/internal/modules/smc/service"
)

// replay прогоняет записанные свечи (JSONL, одна models.Candle на строку)
// через тот же анализатор, что и боевой сканер. Для регрессии порогов
// на исторических данных: HTF выключен, результат детерминирован.
func main() {
	viper.SetConfigName(".replay")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("replay")
	viper.AutomaticEnv()

	viper.SetDefault("symbol", "REPLAY")
	viper.SetDefault("min_tier", "B")
	viper.SetDefault("max_candles", 300)
	viper.SetDefault("cooldown", "1h")

	// конфиг-файл опционален, file можно задать и через REPLAY_FILE
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fatal(errors.Wrap(err, "read config"))
		}
	}

	file := viper.GetString("file")
	if file == "" {
		fatal(errors.New("no input: set file in .replay.yaml or REPLAY_FILE"))
	}

	minTier, ok := models.ParseTier(viper.GetString("min_tier"))
	if !ok {
		fatal(errors.Errorf("bad min_tier %q", viper.GetString("min_tier")))
	}

	if err := run(file, viper.GetString("symbol"), minTier,
		viper.GetInt("max_candles"), viper.GetDuration("cooldown")); err != nil {
		fatal(err)
	}
}

func run(file, symbol string, minTier models.Tier, maxCandles int, cooldown time.Duration) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer f.Close()

	analyzer := smc.NewAnalyzer(config.DefaultSMCConfig(), nil)
	window := market.NewWindow(maxCandles)

	var (
		lines    int
		accepted int
		lastSent time.Time
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		lines++

		var c models.Candle
		if err := sonic.Unmarshal(line, &c); err != nil {
			return errors.Wrapf(err, "line %d", lines)
		}
		window.AppendOrReplace(c)

		if !c.Closed {
			continue
		}
		if !lastSent.IsZero() && cooldown > 0 && c.CloseTime.Sub(lastSent) < cooldown {
			continue
		}

		res, ok := analyzer.Analyze(symbol, window.Snapshot(), minTier)
		if !ok {
			continue
		}

		accepted++
		lastSent = c.CloseTime
		fmt.Printf("--- %s\n%s\n\n", res.CreatedAt.Format(time.RFC3339), res.Message)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "scan input")
	}

	fmt.Printf("replayed %d candles, %d signals\n", lines, accepted)
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "replay:", err)
	os.Exit(1)
}
