package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"tachometer/host/monitor"
	"tachometer/host/serial"
	"tachometer/protocol"
)

var (
	device   = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud     = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	logLevel = flag.String("log-level", "info", "Log level: error, warn, info, debug")
)

func main() {
	flag.Parse()

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := setupLogger(level)

	fmt.Println("Tachometer monitor " + protocol.Version)

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	logger.Info("connecting", "device", cfg.Device, "baud", cfg.Baud)
	mon, err := monitor.Connect(cfg, logger)
	if err != nil {
		logger.Error("connect failed", "error", err)
		os.Exit(1)
	}
	defer mon.Close()

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		close(stop)
	}()

	err = mon.Run(stop, func(r protocol.Report) {
		fmt.Println(monitor.FormatReport(r))
	})

	c := mon.Counters()
	logger.Info("stopped", "reports", c.Reports, "lost", c.Lost, "unknown", c.Unknown, "resyncs", c.Resyncs)
	if err != nil {
		logger.Error("monitor failed", "error", err)
		mon.Close()
		os.Exit(1)
	}
}
