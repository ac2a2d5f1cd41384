package proto

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// float64 可精確表示的最大整數，超過時 number 型別會失去精度
const maxExactInt = 1 << 53

// UserPoint 對應 {id, point, updateMillis}
type UserPoint struct {
	ID           int64
	Point        int64
	UpdateMillis int64
}

// PointHistory 對應 {id, userId, amount, type, updateMillis}
type PointHistory struct {
	ID           int64
	UserID       int64
	Amount       int64
	Type         string
	UpdateMillis int64
}

// NewAmountRequest 組裝 Charge / Use 的請求
func NewAmountRequest(userID, amount int64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"userId": int64Value(userID),
		"amount": int64Value(amount),
	}}
}

// ParseAmountRequest 解析 Charge / Use 的請求
func ParseAmountRequest(s *structpb.Struct) (userID, amount int64, err error) {
	if userID, err = int64Field(s, "userId"); err != nil {
		return 0, 0, err
	}
	if amount, err = int64Field(s, "amount"); err != nil {
		return 0, 0, err
	}
	return userID, amount, nil
}

// ToStruct 轉成 structpb.Struct
func (p UserPoint) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":           int64Value(p.ID),
		"point":        int64Value(p.Point),
		"updateMillis": int64Value(p.UpdateMillis),
	}}
}

// UserPointFromStruct 解析 UserPoint 回應
func UserPointFromStruct(s *structpb.Struct) (UserPoint, error) {
	var (
		p   UserPoint
		err error
	)
	if p.ID, err = int64Field(s, "id"); err != nil {
		return UserPoint{}, err
	}
	if p.Point, err = int64Field(s, "point"); err != nil {
		return UserPoint{}, err
	}
	if p.UpdateMillis, err = int64Field(s, "updateMillis"); err != nil {
		return UserPoint{}, err
	}
	return p, nil
}

// ToStruct 轉成 structpb.Struct
func (h PointHistory) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":           int64Value(h.ID),
		"userId":       int64Value(h.UserID),
		"amount":       int64Value(h.Amount),
		"type":         structpb.NewStringValue(h.Type),
		"updateMillis": int64Value(h.UpdateMillis),
	}}
}

// NewHistoryList 組裝 History 回應，保持傳入順序
func NewHistoryList(records []PointHistory) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(records))
	for _, r := range records {
		values = append(values, structpb.NewStructValue(r.ToStruct()))
	}
	return &structpb.ListValue{Values: values}
}

// HistoryFromList 解析 History 回應
func HistoryFromList(l *structpb.ListValue) ([]PointHistory, error) {
	out := make([]PointHistory, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("history[%d] is not an object", i)
		}
		var (
			h   PointHistory
			err error
		)
		if h.ID, err = int64Field(s, "id"); err != nil {
			return nil, err
		}
		if h.UserID, err = int64Field(s, "userId"); err != nil {
			return nil, err
		}
		if h.Amount, err = int64Field(s, "amount"); err != nil {
			return nil, err
		}
		if h.UpdateMillis, err = int64Field(s, "updateMillis"); err != nil {
			return nil, err
		}
		h.Type = s.GetFields()["type"].GetStringValue()
		out = append(out, h)
	}
	return out, nil
}

// int64Value 與 protojson 相同，int64 以十進位字串傳遞
func int64Value(n int64) *structpb.Value {
	return structpb.NewStringValue(strconv.FormatInt(n, 10))
}

// int64Field 讀取十進位字串，或可精確表示的整數 number
func int64Field(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q must be a decimal int64, got %q", key, kind.StringValue)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f != math.Trunc(f) || f > maxExactInt || f < -maxExactInt {
			return 0, fmt.Errorf("field %q must be an exact integer, got %v", key, f)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("field %q must be a string or number", key)
	}
}
