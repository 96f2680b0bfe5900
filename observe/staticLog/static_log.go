package staticLog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 进程级静态日志句柄，包初始化后即可用，默认输出到 stderr。
// 调用 Init 后切换为滚动文件输出（lumberjack）。
var Log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

// Init 把日志输出切换到滚动文件，tee 到 stderr 方便本地观察。
func Init(path string, maxSizeMB, maxBackups int) {
	if path == "" {
		return
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 64
	}
	if maxBackups <= 0 {
		maxBackups = 7
	}
	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	Log.SetOutput(io.MultiWriter(os.Stderr, rot))
}

// SetLevel 调整全局日志级别（"debug"/"info"/"warn"/"error"）。
func SetLevel(level string) {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("unknown log level %q, keep %s", level, Log.GetLevel())
		return
	}
	Log.SetLevel(lv)
}
