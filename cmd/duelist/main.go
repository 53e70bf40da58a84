package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/idilsaglam/duelist/internal/cli"
	"github.com/idilsaglam/duelist/internal/config"
	"github.com/idilsaglam/duelist/internal/logger"
	"github.com/idilsaglam/duelist/internal/ui"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfgPath, err := config.ConfigPath()
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(cli.ExitError)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		ui.Hint(os.Stderr, "Hint: fix "+cfgPath+" or regenerate it with `duelist init --force`")
		os.Exit(cli.ExitUsage)
	}

	logPath, err := cfg.LogPath()
	if err == nil {
		err = logger.Init(cfg.Log.Development, logPath)
	}
	if err != nil {
		ui.Hint(os.Stderr, "logging disabled: "+err.Error())
	}
	ui.SetTheme(cfg.UI.Theme)

	code := cli.Execute(os.Args[1:], os.Stdout, os.Stderr, cli.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
	})
	logger.Sync()
	os.Exit(code)
}
