package keyedlock

import (
	"context"
	"sync"
)

// KeyedLock 依 key 提供互斥鎖，同一個 key 同時間只會有一個持有者。
// 不同 key 之間互不阻塞。
//
// 每個 key 對應一個容量為 1 的 channel：送入代表持有，取出代表釋放。
// 登記表只增不減，適用於 key 數量有限的單機情境。
type KeyedLock[K comparable] struct {
	slots sync.Map // map[K]chan struct{}
}

// New 建立一個新的 KeyedLock
func New[K comparable]() *KeyedLock[K] {
	return &KeyedLock[K]{}
}

// slot 取得或建立 key 對應的鎖
// LoadOrStore 保證同一個 key 併發首次建立時只會留下一個實例
func (l *KeyedLock[K]) slot(key K) chan struct{} {
	// Fast path
	if v, ok := l.slots.Load(key); ok {
		return v.(chan struct{})
	}
	v, _ := l.slots.LoadOrStore(key, make(chan struct{}, 1))
	return v.(chan struct{})
}

// Acquire 阻塞直到取得 key 的鎖
//
// 參數:
//
//	ctx: 上下文，取消時放棄等待
//	key: 要鎖定的 key
//
// 回傳:
//
//	error: ctx 結束前未取得鎖時回傳 ctx.Err()
func (l *KeyedLock[K]) Acquire(ctx context.Context, key K) error {
	ch := l.slot(key)

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release 釋放 key 的鎖，喚醒至多一個等待者。
// 沒有持有者 (或從未出現過的 key) 時不做任何事。
func (l *KeyedLock[K]) Release(key K) {
	v, ok := l.slots.Load(key)
	if !ok {
		return
	}
	select {
	case <-v.(chan struct{}):
	default:
	}
}

// Len 回傳目前登記過的 key 數量
func (l *KeyedLock[K]) Len() int {
	n := 0
	l.slots.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
