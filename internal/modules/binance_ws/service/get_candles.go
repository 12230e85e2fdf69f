package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"smc_bot/internal/models"
)

// GetCandles — REST-прогрев истории: /fapi/v1/klines, oldest-first.
// Формат ряда: [openTime, o, h, l, c, vol, closeTime, ...] — числа и
// строки вперемешку, битые ряды пропускаем.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 100
	}

	u := fmt.Sprintf("%s/fapi/v1/klines?symbol=%s&interval=%s&limit=%d",
		c.restURL, url.QueryEscape(symbol), url.QueryEscape(interval), limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build klines request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch klines")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read klines body")
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("klines http %d: %s", resp.StatusCode, string(b))
	}

	var rows [][]any
	if err := sonic.Unmarshal(b, &rows); err != nil {
		return nil, errors.Wrap(err, "decode klines")
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		openMs, ok0 := klineInt(row[0])
		closeMs, ok6 := klineInt(row[6])
		open, ok1 := klineFloat(row[1])
		high, ok2 := klineFloat(row[2])
		low, ok3 := klineFloat(row[3])
		closep, ok4 := klineFloat(row[4])
		vol, ok5 := klineFloat(row[5])
		if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok6 {
			continue
		}
		if closep <= 0 {
			continue
		}
		if !ok5 {
			vol = 0
		}

		out = append(out, models.Candle{
			OpenTime:  time.UnixMilli(openMs),
			CloseTime: time.UnixMilli(closeMs),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closep,
			Volume:    vol,
			Closed:    true,
		})
	}

	// хвост истории может быть ещё не закрытой свечой
	if n := len(out); n > 0 && time.Now().Before(out[n-1].CloseTime) {
		out[n-1].Closed = false
	}

	return out, nil
}

func klineFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func klineInt(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
