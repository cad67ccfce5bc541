package dialog

type State string

const (
	StateIdle State = "idle"

	// ждём номер партии после кнопки «Партия»
	StateAwaitBatchID State = "await_batch_id"
	// ждём период отчёта (YYYY-MM или YYYY)
	StateAwaitReportPeriod State = "await_report_period"
	// ждём Excel с прайсом категорий
	StateAwaitPriceImport State = "await_price_import"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// GetInt читает число из payload; после JSON числа приходят как float64.
func GetInt(p Payload, key string) (int, bool) {
	switch v := p[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
