package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type flogger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
	Fatalf(format string, v ...interface{})
}

// ThreadLogger prefixes every line with the task name.
type ThreadLogger struct {
	name string
}

func (tl *ThreadLogger) Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf("["+tl.name+"] "+format, v...))
}

func (tl *ThreadLogger) Println(v ...interface{}) {
	log.Output(2, "["+tl.name+"] "+fmt.Sprintln(v...))
}

func (tl *ThreadLogger) Fatalf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf("["+tl.name+"] "+format, v...))
	os.Exit(1)
}

// setupLogging sends the std logger to a rotated log file, and to stdout
// as well when asked to.
func setupLogging(settings configSettings, stdout bool) (*lumberjack.Logger, error) {
	fname := settings.GetString(sLogFile)
	if fname == "" {
		return nil, fmt.Errorf("no log file configured")
	}
	lj := &lumberjack.Logger{
		Filename:   fname,
		MaxSize:    settings.GetInt(sLogMaxSize), // megabytes
		MaxBackups: settings.GetInt(sLogBackups),
		Compress:   false,
	}

	var w io.Writer = lj
	if stdout || settings.GetBool(sLogStdout) {
		w = io.MultiWriter(lj, os.Stdout)
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return lj, nil
}
