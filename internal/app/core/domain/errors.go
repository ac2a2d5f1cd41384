package domain

import "errors"

var (
	// ErrInvalidAmount 金額必須為正數 (charge/use 皆適用)
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds 餘額不足
	// 從未充值過的使用者餘額為 0，同樣回傳此錯誤
	ErrInsufficientFunds = errors.New("insufficient point balance")

	// ErrPointOverflow 充值後餘額超出 int64 範圍
	ErrPointOverflow = errors.New("point balance overflow")

	// ErrJournalWriteFailed 寫入 Journal 失敗
	ErrJournalWriteFailed = errors.New("journal write failed")
)

// IsClientError 判斷錯誤是否屬於呼叫端輸入造成的錯誤
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrPointOverflow)
}
