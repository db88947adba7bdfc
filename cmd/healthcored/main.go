package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/skillsenselab/healthcore/app"
	"github.com/skillsenselab/healthcore/config"
	"github.com/skillsenselab/healthcore/version"
)

const serviceName = "healthcored"

func main() {
	var (
		configFile  = flag.String("config", "", "path to config.yml (default: search standard locations)")
		envFile     = flag.String("env", "", "path to .env file (default: search standard locations)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Short())
		return
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(serviceName, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}
