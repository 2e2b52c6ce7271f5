package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

var errorLogger = log.New(os.Stderr, "[ERROR] ", log.Flags())
var outLogger = log.New(os.Stdout, "[INFO] ", log.Flags())
var debugLogger = log.New(io.Discard, "[DEBUG] ", log.Flags())
var logFile *os.File
var locker sync.Mutex

// Init points the loggers at stdout/stderr plus the given file. An empty file
// name logs to the console only. Debug output is dropped unless debug is set.
func Init(file string, debug bool) error {
	locker.Lock()
	defer locker.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var err error
	if file != "" {
		logFile, err = os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("Error loading log file: %s", err.Error())
			logFile = nil
		}
	}

	var output io.Writer
	var errorOut io.Writer
	var debugOut io.Writer
	if logFile != nil {
		output = io.MultiWriter(os.Stdout, logFile)
		errorOut = io.MultiWriter(os.Stderr, logFile)
		debugOut = io.MultiWriter(os.Stdout, logFile)
	} else {
		output = os.Stdout
		errorOut = os.Stderr
		debugOut = os.Stdout
	}

	if !debug {
		debugOut = io.Discard
	}

	errorLogger.SetOutput(errorOut)
	outLogger.SetOutput(output)
	debugLogger.SetOutput(debugOut)
	return err
}

func Close() error {
	locker.Lock()
	defer locker.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func Out() *log.Logger {
	return outLogger
}

func Err() *log.Logger {
	return errorLogger
}

func Debug() *log.Logger {
	return debugLogger
}
