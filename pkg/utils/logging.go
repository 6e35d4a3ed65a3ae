package utils

import (
    "os"
    "path/filepath"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Logger returns the process-wide zap logger. LOG_FILE tees JSON output
// to a file in addition to stdout; LOG_LEVEL overrides the info default.
func Logger() *zap.Logger {
    if logger != nil { return logger }
    lvl := zapcore.InfoLevel
    if s := os.Getenv("LOG_LEVEL"); s != "" {
        if parsed, err := zapcore.ParseLevel(s); err == nil { lvl = parsed }
    }
    logFile := os.Getenv("LOG_FILE")
    if logFile == "" {
        cfg := zap.NewProductionConfig()
        cfg.Level = zap.NewAtomicLevelAt(lvl)
        l, _ := cfg.Build()
        logger = l
        return logger
    }
    _ = os.MkdirAll(filepath.Dir(logFile), 0o755)
    f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        l, _ := zap.NewProduction()
        logger = l
        return logger
    }
    encCfg := zap.NewProductionEncoderConfig()
    enc := zapcore.NewJSONEncoder(encCfg)
    fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
    consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
    logger = zap.New(zapcore.NewTee(fileCore, consoleCore))
    return logger
}
