package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType 交易類型
// 為了節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 充值
	TransactionTypeCharge TransactionType = 1
	// 使用
	TransactionTypeUse TransactionType = 2
)

// String 回傳對外的交易類型字串 ("CHARGE" / "USE")
func (t TransactionType) String() string {
	switch t {
	case TransactionTypeCharge:
		return "CHARGE"
	case TransactionTypeUse:
		return "USE"
	default:
		return fmt.Sprintf("TransactionType(%d)", uint8(t))
	}
}

// MarshalText 讓 JSON 輸出為字串而非數字
func (t TransactionType) MarshalText() ([]byte, error) {
	switch t {
	case TransactionTypeCharge, TransactionTypeUse:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("unknown transaction type %d", uint8(t))
	}
}

// UnmarshalText 解析 "CHARGE" / "USE"
func (t *TransactionType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "CHARGE":
		*t = TransactionTypeCharge
	case "USE":
		*t = TransactionTypeUse
	default:
		return fmt.Errorf("unknown transaction type %q", text)
	}
	return nil
}

// PointHistory 一筆已提交的充值/使用紀錄，建立後不可變
type PointHistory struct {
	// ID: 插入時分配的遞增序號，同時間戳時用來決定先後
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	Amount       int64           `json:"amount"`
	Type         TransactionType `json:"type"`
	UpdateMillis int64           `json:"updateMillis"`
}

// JournalEntry 寫入 Journal 的單筆交易
type JournalEntry struct {
	RefID     uuid.UUID       `json:"refId"`
	UserID    int64           `json:"userId"`
	Type      TransactionType `json:"type"`
	Amount    int64           `json:"amount"`
	Point     int64           `json:"point"`
	CreatedAt time.Time       `json:"createdAt"`
}
