package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/quentel/rebal/cmd"
)

func main() {
	// Local overrides (API keys, data paths) may live in a .env file.
	_ = godotenv.Load()

	// Shell completion: exits early when invoked by the shell.
	subs := map[string]*complete.Command{}
	for _, name := range cmd.CommandNames() {
		subs[name] = &complete.Command{}
	}
	completer := &complete.Command{
		Sub: subs,
		Flags: map[string]complete.Predictor{
			"holdings":     predict.Files("*.csv"),
			"targets-dir":  predict.Dirs("*"),
			"targets-json": predict.Files("*.json"),
			"conventions":  predict.Files("*.yaml"),
			"out":          predict.Dirs("*"),
		},
	}
	completer.Complete("rebal")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
