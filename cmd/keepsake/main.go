package main

import (
	"context"
	"log"
	"os"

	"keepsake/internal/buildinfo"
	"keepsake/internal/cli"
	"keepsake/internal/config"
	"keepsake/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg, logging.NewJSON(os.Stderr))
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
