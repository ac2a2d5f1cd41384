package logger

import (
	"io"

	"github.com/go-kratos/kratos/v2/log"
)

// New 建立帶有時間與呼叫位置欄位的 Logger，並依 level 過濾
//
// 參數:
//
//	w: 輸出目標 (通常為 os.Stdout)
//	level: "debug", "info", "warn", "error"，無法解析時視為 info
func New(w io.Writer, level string) log.Logger {
	l := log.With(log.NewStdLogger(w),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
	)
	return log.NewFilter(l, log.FilterLevel(ParseLevel(level)))
}

// ParseLevel 解析 Log 等級，未知的字串回傳 LevelInfo
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.LevelDebug
	case "info":
		return log.LevelInfo
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// Discard 丟棄所有輸出，測試用
func Discard() log.Logger {
	return log.NewStdLogger(io.Discard)
}
