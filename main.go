/*
 * EM2200 - Main program
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	getopt "github.com/pborman/getopt/v2"
	reader "github.com/rcornwell/EM2200/command/reader"
	config "github.com/rcornwell/EM2200/config/configparser"
	machine "github.com/rcornwell/EM2200/config/machineconfig"
	timer "github.com/rcornwell/EM2200/emu/timer"
	"github.com/rcornwell/EM2200/util/debug"
	logger "github.com/rcornwell/EM2200/util/logger"
	"github.com/tebeka/atexit"

	_ "github.com/rcornwell/EM2200/config/debugconfig"
)

// Interval between trace flushes.
const clockInterval = time.Second

// Default from environment or .env file.
func envDefault(name, def string) string {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value
	}
	return def
}

func main() {
	// Missing .env is not an error.
	_ = godotenv.Load()

	optConfig := getopt.StringLong("config", 'c', envDefault("EM2200_CONFIG", "EM2200.cfg"), "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', envDefault("EM2200_LOG", ""), "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		atexit.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("Unable to create log file: " + err.Error())
			atexit.Exit(1)
		}
		atexit.Register(func() { file.Close() })
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("EM2200 Started")
	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		atexit.Exit(1)
	}

	atexit.Register(debug.Close)
	if err := config.LoadConfigFile(*optConfig); err != nil {
		Logger.Error(err.Error())
		atexit.Exit(1)
	}

	cpus, err := machine.Build()
	if err != nil {
		Logger.Error(err.Error())
		atexit.Exit(1)
	}
	cpus.Start()

	// Flush traces while running.
	clock := timer.NewTimer(cpus, clockInterval)
	clock.Start()

	msg := make(chan string, 1)
	go func() {
		reader.ConsoleReader(cpus)
		msg <- ""
	}()

	// Wait on shutdown option
	<-msg

	clock.Shutdown()
	cpus.Stop()
	Logger.Info("Processors stopped.")
	atexit.Exit(0)
}
