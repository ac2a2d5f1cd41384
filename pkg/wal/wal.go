package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"
)

// 檔案權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀)
	FileModeReadOnly fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫)
	FileModePrivate fs.FileMode = 0600
)

// 封存檔名後綴，依時間排序即為寫入順序
const segmentSuffixLayout = "20060102T150405.000000000"

// Option 定義 WAL 的配置選項函數
type Option func(*options)

type options struct {
	maxBytes int64
	mode     fs.FileMode
	now      func() time.Time
}

// WithMaxBytes 目前檔案達到 n bytes 後封存並開新檔，n <= 0 表示不輪替
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithFileMode 設定新建檔案的權限
func WithFileMode(mode fs.FileMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WAL 以 JSON Lines 追加寫入 T 型別的紀錄，可安全地被多個 goroutine 共用
//
// 結構:
//
//	path: 目前寫入中的檔案，封存檔為 path.<時間>
//	size: 目前檔案大小，用來判斷是否需要輪替
type WAL[T any] struct {
	mu   sync.Mutex
	path string
	file *os.File
	size int64
	opts options
}

// NewWAL 開啟或建立一個 WAL 檔案
// O_RDWR 讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL[T any](path string, opts ...Option) (*WAL[T], error) {
	o := options{mode: FileModeReadOnly, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	w := &WAL[T]{path: path, opts: o}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WAL[T]) open() error {
	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, w.opts.mode)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	w.file = file
	w.size = info.Size()
	return nil
}

// Write 寫入一筆紀錄並刷入硬碟，回傳前資料已落地
// 寫入後超過 maxBytes 時封存目前檔案，封存失敗不影響已寫入的紀錄
func (w *WAL[T]) Write(v T) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.file.Write(line)
	w.size += int64(n)
	if err != nil {
		return err
	}
	if err := w.file.Sync(); err != nil {
		return err
	}
	if w.opts.maxBytes > 0 && w.size >= w.opts.maxBytes {
		return w.rotate()
	}
	return nil
}

// rotate 呼叫端必須持有 mu
func (w *WAL[T]) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close segment: %w", err)
	}
	archived := w.path + "." + w.opts.now().UTC().Format(segmentSuffixLayout)
	if err := os.Rename(w.path, archived); err != nil {
		// 改名失敗就繼續寫原本的檔案
		if reopenErr := w.open(); reopenErr != nil {
			return errors.Join(err, reopenErr)
		}
		return fmt.Errorf("archive segment: %w", err)
	}
	return w.open()
}

// Sync 強制刷入硬碟
func (w *WAL[T]) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// Close 關閉檔案
func (w *WAL[T]) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadAll 從頭依序讀取目前檔案的所有紀錄 (不含封存檔)
// callback 每次收到一筆紀錄，避免一次將所有資料載入記憶體
func (w *WAL[T]) ReadAll(callback func(v T) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var v T
		if err := decoder.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(v); err != nil {
			return err
		}
	}
}
