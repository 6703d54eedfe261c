package constant

const (
	DefaultPair = "GBR/USDT"

	TradingStreamName                  = "trading"
	TradingStreamSubjectAll            = "trading.*"
	TradingStreamSubjectOrderPlaced    = "trading.order_placed"
	TradingStreamSubjectOrderFilled    = "trading.order_filled"
	TradingStreamSubjectOrderCancelled = "trading.order_cancelled"

	TradingQueueName  = "trading_queue"
	TradingQueueGroup = "trading_queue_group"

	SessionKeyPrefix = "session:"
)
