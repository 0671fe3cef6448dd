package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/sui-local-wallet/internal/auth"
	"github.com/AlexZinkM/sui-local-wallet/internal/balance"
	"github.com/AlexZinkM/sui-local-wallet/internal/client"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/handler"
	"github.com/AlexZinkM/sui-local-wallet/internal/wallet"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter sends log output to stdout and, once initLogRotator has run, to
// the rotating log file.
type logWriter struct {
	rotatorPipe *io.PipeWriter
}

func (w *logWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	if w.rotatorPipe != nil {
		w.rotatorPipe.Write(b)
	}
	return len(b), nil
}

// Loggers per subsystem. All of them write to backendLog.
var (
	writer = &logWriter{}

	backendLog = btclog.NewBackend(writer)

	// logRotator must be closed on shutdown.
	logRotator *rotator.Rotator

	lwltLog = backendLog.Logger("LWLT")
	valtLog = backendLog.Logger("VALT")
	authLog = backendLog.Logger("AUTH")
	blncLog = backendLog.Logger("BLNC")
	clntLog = backendLog.Logger("CLNT")
	wlltLog = backendLog.Logger("WLLT")
	httpLog = backendLog.Logger("HTTP")
)

func init() {
	crypto.UseLogger(valtLog)
	auth.UseLogger(authLog)
	balance.UseLogger(blncLog)
	client.UseLogger(clntLog)
	wallet.UseLogger(wlltLog)
	handler.UseLogger(httpLog)
}

var subsystemLoggers = map[string]btclog.Logger{
	"LWLT": lwltLog,
	"VALT": valtLog,
	"AUTH": authLog,
	"BLNC": blncLog,
	"CLNT": clntLog,
	"WLLT": wlltLog,
	"HTTP": httpLog,
}

// initLogRotator starts writing logs to logFile, rolling it at maxSizeMB and
// keeping maxFiles old copies.
func initLogRotator(logFile string, maxSizeMB, maxFiles int) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	r, err := rotator.New(logFile, int64(maxSizeMB*1024), false, maxFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	writer.rotatorPipe = pw
	logRotator = r
	return nil
}

// setLogLevels sets every subsystem to level. Unknown levels fall back to
// info.
func setLogLevels(level string) {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lwltLog.Warnf("Unknown log level %q, using info", level)
		lvl = btclog.LevelInfo
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
}
