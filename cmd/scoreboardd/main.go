package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"scoreboard/internal/di"
	"scoreboard/internal/structures"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	flags := &structures.CliFlags{}
	var envFile string
	flag.StringVarP(&flags.ConfigPath, "config", "c", "config.yml", "path to the YAML config file")
	flag.BoolVarP(&flags.DebugMode, "debug", "d", false, "mirror logs to the console")
	flag.BoolVar(&flags.Ephemeral, "ephemeral", false, "keep board state in memory only")
	flag.StringVar(&envFile, "env-file", ".env", "optional file of SCOREBOARD_* overrides")
	flag.Parse()

	// Variables already set in the environment win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "scoreboardd: warning: could not load %s: %s\n", envFile, err)
	}

	_, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scoreboardd: %s\n", err)
		os.Exit(1)
	}
	cleanup()
}
