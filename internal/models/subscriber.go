package models

import "time"

// Subscriber — чат, подписанный на рассылку сигналов.
// MinTier — персональная планка: сигналы ниже неё чату не шлются.
type Subscriber struct {
	ChatID    int64     `json:"chat_id"`
	MinTier   Tier      `json:"min_tier"`
	CreatedAt time.Time `json:"created_at"`
}
