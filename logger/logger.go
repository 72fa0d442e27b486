package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var (
	infoLogger  = newLogger(os.Stdout, "INFO: ")
	debugLogger = newLogger(os.Stdout, "DEBUG: ")
	warnLogger  = newLogger(os.Stdout, "WARN: ")
	errorLogger = newLogger(os.Stdout, "ERROR: ")
	fatalLogger = newLogger(os.Stdout, "FATAL: ")
)

func setOutput(out io.Writer) {
	infoLogger.out = out
	debugLogger.out = out
	warnLogger.out = out
	errorLogger.out = out
	fatalLogger.out = out
}

// Set up the logger to mirror all output to a log file as well as the
// console. Must provide the path to where the log files should go.
func UseLogFile(logPath string) error {
	err := os.MkdirAll(logPath, os.ModePerm)
	if err != nil {
		return err
	}

	name := filepath.Join(logPath, time.Now().Format("2006-01-02_150405")+".log")
	logFile, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}

	setOutput(io.MultiWriter(os.Stdout, logFile))
	return nil
}

// render turns the leading argument of a logging call into a printf format
// string. Both plain strings and errors are accepted.
func render(format any) string {
	switch a := format.(type) {
	case string:
		return a
	case error:
		return a.Error()
	default:
		return fmt.Sprintf("%v", a)
	}
}

func Info(format any, v ...any) {
	infoLogger.logWrite(render(format), v...)
}

func Debug(format any, v ...any) {
	debugLogger.logWrite(render(format), v...)
}

func Warn(format any, v ...any) {
	warnLogger.logWrite(render(format), v...)
}

func Error(format any, v ...any) {
	errorLogger.logWrite(render(format), v...)
}

// Fatal logs the provided message, then calls os.Exit(1).
func Fatal(format any, v ...any) {
	fatalLogger.logWrite(render(format), v...)
	os.Exit(1)
}
