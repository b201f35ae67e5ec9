package config

import (
	"flag"
	"os"
	"time"

	"keepsake/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the data backend
//	-d string   path to the local snapshot database
//	-b string   object storage bucket name
//	-e string   object storage endpoint URL
//	-w int      live view poll interval in seconds
//
// The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, so the config-file flag handled
// elsewhere does not abort the parse.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-e", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the data backend")
	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "path to the local snapshot database")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "object storage bucket")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "object storage endpoint URL")
	watchInterval := fs.Int("w", int(cfg.WatchInterval.Seconds()), "live view poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.WatchInterval = time.Duration(*watchInterval) * time.Second
}
