// licensetool is a support-desk utility around the license subsystem:
// activate a code on this machine, validate the stored license, force a
// check-in, or print the hardware fingerprint when diagnosing a mismatch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"madaris/internal/config"
	"madaris/internal/infrastructure"
	"madaris/internal/license"
	"madaris/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "optional yaml config file")
	baseDir := flag.String("base", "", "application base directory (defaults to executable dir)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall command timeout")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionInfo())
		return
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(*baseDir)
	if err != nil {
		slog.Error("failed to resolve paths", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	collector := license.NewCollector()
	store := license.NewStore(paths.LicenseFile)
	client := license.NewClient(cfg.Remote)
	metrics, err := license.NewMetrics()
	if err != nil {
		slog.Warn("metrics unavailable", "error", err)
	}

	switch flag.Arg(0) {
	case "activate":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: licensetool activate <code>")
			os.Exit(2)
		}
		activator := license.NewActivator(client, store, collector)
		activator.SetMetrics(metrics)
		result := <-license.RunActivation(ctx, activator, flag.Arg(1))
		fmt.Println(result.Message)
		if !result.OK {
			os.Exit(1)
		}

	case "validate":
		validator := license.NewValidator(store, collector, client)
		validator.SetMetrics(metrics)
		status := license.StartupCheck(ctx, validator)
		fmt.Println(status.Message)
		if !status.OK {
			os.Exit(1)
		}

	case "checkin":
		validator := license.NewValidator(store, collector, client)
		validator.SetMetrics(metrics)
		validator.Checkin(ctx)
		fmt.Println("check-in attempted")

	case "fingerprint":
		hw := collector.Collect()
		fmt.Printf("motherboard: %s\n", hw.Motherboard)
		fmt.Printf("cpu:         %s\n", hw.CPU)
		fmt.Printf("mac:         %s\n", hw.MAC)
		fmt.Printf("drive:       %s\n", hw.Drive)
		fmt.Printf("fingerprint: %s\n", license.Fingerprint(hw))

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: licensetool [flags] <command>

commands:
  activate <code>   bind an activation code to this machine
  validate          check the stored license against current hardware
  checkin           update last_checkin_at on the remote row
  fingerprint       print the hardware components and fingerprint`)
	flag.PrintDefaults()
}
