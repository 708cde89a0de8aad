// Package logger 在 zap 之上提供生成器使用的结构化日志。
package logger

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 嵌入 SugaredLogger，Infow/Debugw 等方法可直接使用。
type Logger struct {
	*zap.SugaredLogger
}

// New 按级别与格式创建日志器。format 为 json 时输出机器可读的 JSON，其余为控制台格式。
func New(level, format string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	l, err := cfg.Build(zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		// 配置在本函数内固定构造，构建失败只可能是无法打开 stderr
		panic(err)
	}
	return FromZap(l)
}

func FromZap(l *zap.Logger) *Logger {
	return &Logger{SugaredLogger: l.Sugar()}
}

// Nop 丢弃全部输出，测试与未注入日志器时使用。
func Nop() *Logger {
	return FromZap(zap.NewNop())
}

// ParseLevel 解析 debug/info/warn/error，大小写不敏感；无法识别时为 info。
func ParseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || lvl < zapcore.DebugLevel || lvl > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return lvl
}

// WithFields 返回附带字段的新日志器；字段按键名排序，输出顺序稳定。
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	zf := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	return FromZap(l.Desugar().With(zf...))
}

// WithError 以 error 键附加错误；err 为 nil 时原样返回。
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return FromZap(l.Desugar().With(zap.Error(err)))
}
