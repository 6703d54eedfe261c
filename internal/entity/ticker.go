package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ticker struct {
	Pair      string          `json:"pair"`
	LastPrice decimal.Decimal `json:"last_price"`
	Change24h decimal.Decimal `json:"change_24h"`
	High24h   decimal.Decimal `json:"high_24h"`
	Low24h    decimal.Decimal `json:"low_24h"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type OrderEvent struct {
	Type  string `json:"type"`
	Order Order  `json:"order"`
}
