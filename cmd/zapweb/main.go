package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/zapweb/internal/app"
	"github.com/matheus3301/zapweb/internal/config"
	"github.com/matheus3301/zapweb/internal/profile"
	"github.com/matheus3301/zapweb/internal/tui"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	serverFlag := flag.String("server", "", "backend base URL (overrides config)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(profile.ConfigPath())
	if *serverFlag != "" {
		cfg.ServerURL = *serverFlag
	}

	var ui *tui.App
	fxApp := fx.New(
		app.Module(app.Params{ProfileName: profileName, Config: cfg}),
		fx.Populate(&ui),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	runErr := ui.Run()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	_ = fxApp.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}
