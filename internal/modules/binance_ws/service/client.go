package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
	"smc_bot/pkg/logger"
)

const (
	reconnectDelay = 5 * time.Second
	keepaliveEvery = 3 * time.Minute
	readTimeout    = 10 * time.Minute
)

// Client — стример kline-свечей Binance Futures: один комбинированный
// WebSocket на всю вселенную пар, periodic-refresh вселенной через reconnect.
type Client struct {
	streamURL     string
	restURL       string
	timeframe     string
	maxPairs      int
	minVolumeUSDT float64
	refreshEvery  time.Duration

	http     *http.Client
	wsDialer *websocket.Dialer
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		streamURL:     cfg.Binance.StreamURL,
		restURL:       cfg.Binance.RestURL,
		timeframe:     cfg.Timeframe,
		maxPairs:      cfg.MaxPairs,
		minVolumeUSDT: cfg.MinVolumeUSDT,
		refreshEvery:  cfg.RefreshPairs,
		http:          &http.Client{Timeout: 10 * time.Second},
		wsDialer:      &websocket.Dialer{},
	}
}

// Stream — главный цикл: вселенная пар → connect → read-loop.
// Отдаёт каждый kline (и открытый, и закрытый), фильтрует потребитель.
// Блокируется до отмены ctx, канал закрывает сам.
func (c *Client) Stream(ctx context.Context, out chan<- models.CandleTick) {
	defer close(out)

	for {
		if ctx.Err() != nil {
			return
		}

		syms, err := c.TopPairs(ctx)
		if err != nil {
			logger.Error("binance: pairs refresh: %v", err)
			sleepCtx(ctx, 30*time.Second)
			continue
		}
		if len(syms) == 0 {
			logger.Warn("binance: volume filter matched no pairs, retry in 30s")
			sleepCtx(ctx, 30*time.Second)
			continue
		}

		logger.Info("binance: scanning %d pairs on %s", len(syms), c.timeframe)

		// одно соединение живёт до refresh-интервала, потом reconnect
		// пересобирает вселенную
		c.runConnection(ctx, syms, out)

		sleepCtx(ctx, reconnectDelay)
	}
}

func (c *Client) runConnection(ctx context.Context, syms []string, out chan<- models.CandleTick) {
	streams := make([]string, 0, len(syms))
	for _, s := range syms {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", s, c.timeframe))
	}
	url := fmt.Sprintf("%s?streams=%s", c.streamURL, strings.Join(streams, "/"))

	conn, _, err := c.wsDialer.DialContext(ctx, url, nil)
	if err != nil {
		logger.Error("binance: dial: %v", err)
		return
	}
	defer conn.Close()

	logger.Info("binance: websocket connected, %d streams", len(streams))

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		t := time.NewTicker(keepaliveEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopPing:
				return
			case <-t.C:
				deadline := time.Now().Add(10 * time.Second)
				_ = conn.WriteControl(websocket.PingMessage, nil, deadline)
			}
		}
	}()

	refreshAt := time.Now().Add(c.refreshEvery)

	for {
		if ctx.Err() != nil {
			return
		}
		if time.Now().After(refreshAt) {
			logger.Info("binance: pairs refresh interval reached, reconnecting")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Error("binance: read: %v", err)
			return
		}

		tick, ok := parseKlineFrame(msg)
		if !ok {
			continue
		}

		select {
		case out <- tick:
		case <-ctx.Done():
			return
		}
	}
}

// parseKlineFrame — комбинированный кадр {"stream":..., "data":{"k":{...}}}.
// Битые числовые поля пропускаем целиком, одна кривая свеча не должна
// ронять соединение.
func parseKlineFrame(msg []byte) (models.CandleTick, bool) {
	var frame struct {
		Data struct {
			Kline struct {
				StartMs  int64  `json:"t"`
				EndMs    int64  `json:"T"`
				Symbol   string `json:"s"`
				Interval string `json:"i"`
				Open     string `json:"o"`
				High     string `json:"h"`
				Low      string `json:"l"`
				Close    string `json:"c"`
				Volume   string `json:"v"`
				Closed   bool   `json:"x"`
			} `json:"k"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(msg, &frame); err != nil {
		return models.CandleTick{}, false
	}

	k := frame.Data.Kline
	if k.Symbol == "" {
		return models.CandleTick{}, false
	}

	open, err1 := strconv.ParseFloat(k.Open, 64)
	high, err2 := strconv.ParseFloat(k.High, 64)
	low, err3 := strconv.ParseFloat(k.Low, 64)
	closep, err4 := strconv.ParseFloat(k.Close, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.CandleTick{}, false
	}
	if closep <= 0 {
		return models.CandleTick{}, false
	}

	// объём не критичен, битый просто обнуляем
	vol, _ := strconv.ParseFloat(k.Volume, 64)

	return models.CandleTick{
		Symbol:       k.Symbol,
		TimeframeRaw: k.Interval,
		Candle: models.Candle{
			OpenTime:  time.UnixMilli(k.StartMs),
			CloseTime: time.UnixMilli(k.EndMs),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closep,
			Volume:    vol,
			Closed:    k.Closed,
		},
	}, true
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
