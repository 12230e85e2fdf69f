package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// TopPairs — вселенная USDT-перпов по 24h quote-объёму:
// фильтр по минимальному объёму, сортировка по убыванию, срез maxPairs.
// Символы в нижнем регистре, как их ждёт stream-URL.
func (c *Client) TopPairs(ctx context.Context) ([]string, error) {
	u := fmt.Sprintf("%s/fapi/v1/ticker/24hr", c.restURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build ticker request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch 24h tickers")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read ticker body")
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("ticker http %d: %s", resp.StatusCode, string(b))
	}

	var tickers []struct {
		Symbol      string `json:"symbol"`
		QuoteVolume string `json:"quoteVolume"`
	}
	if err := sonic.Unmarshal(b, &tickers); err != nil {
		return nil, errors.Wrap(err, "decode tickers")
	}

	type pair struct {
		symbol string
		volume float64
	}
	pairs := make([]pair, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		vol, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil || vol < c.minVolumeUSDT {
			continue
		}
		pairs = append(pairs, pair{symbol: strings.ToLower(t.Symbol), volume: vol})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].volume > pairs[j].volume })

	if c.maxPairs > 0 && len(pairs) > c.maxPairs {
		pairs = pairs[:c.maxPairs]
	}

	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.symbol)
	}
	return out, nil
}
