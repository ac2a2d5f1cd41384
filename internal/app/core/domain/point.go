package domain

import (
	"fmt"
	"math"
)

// UserPoint 使用者目前的點數快照
type UserPoint struct {
	ID           int64 `json:"id"`
	Point        int64 `json:"point"`
	UpdateMillis int64 `json:"updateMillis"`
}

// EmptyUserPoint 從未出現過的使用者，餘額視為 0
func EmptyUserPoint(id int64, updateMillis int64) *UserPoint {
	return &UserPoint{
		ID:           id,
		Point:        0,
		UpdateMillis: updateMillis,
	}
}

// Charge 計算充值後的餘額，不修改 UserPoint 本身
func (p *UserPoint) Charge(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if p.Point > math.MaxInt64-amount {
		return 0, ErrPointOverflow
	}
	return p.Point + amount, nil
}

// Use 計算使用後的餘額，不修改 UserPoint 本身
func (p *UserPoint) Use(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if p.Point < amount {
		return 0, ErrInsufficientFunds
	}
	return p.Point - amount, nil
}

// Apply 依交易類型計算新餘額
// 未知的交易類型屬於程式錯誤，不屬於呼叫端錯誤
func (p *UserPoint) Apply(txType TransactionType, amount int64) (int64, error) {
	switch txType {
	case TransactionTypeCharge:
		return p.Charge(amount)
	case TransactionTypeUse:
		return p.Use(amount)
	default:
		return 0, fmt.Errorf("unknown transaction type %d", uint8(txType))
	}
}
