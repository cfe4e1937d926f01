package core

import (
	"io"
	"log"
	"os"
)

var (
	// LogDbg logs debugging events, discarded unless verbose logging is enabled.
	LogDbg = log.New(io.Discard, "dbg:", log.LstdFlags)
	// LogInf logs informational events.
	LogInf = log.New(os.Stderr, "inf:", log.LstdFlags)
	// LogWrn logs warning events.
	LogWrn = log.New(os.Stderr, "wrn:", log.LstdFlags)
	// LogErr logs error events.
	LogErr = log.New(os.Stderr, "err:", log.LstdFlags)
)

// SetLogFile setups a log file for all loggers.
//
// Remarks:
//   - Empty path leaves the loggers writing to stderr.
func SetLogFile(path string) error {
	if path == "" {
		return nil
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	for _, logger := range []*log.Logger{LogInf, LogWrn, LogErr} {
		logger.SetOutput(file)
		logger.SetFlags(log.LUTC | log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	if LogDbg.Writer() != io.Discard {
		LogDbg.SetOutput(file)
	}

	return nil
}

// SetVerbose enables or disables debug logging.
func SetVerbose(verbose bool) {
	if verbose {
		LogDbg.SetOutput(LogInf.Writer())
	} else {
		LogDbg.SetOutput(io.Discard)
	}
}
