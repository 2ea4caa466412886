package main

import (
	"log"
	"os"

	"github.com/arkhamdesk/sheetvault/internal/sheet/app"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cliApp := cli.NewApp()
	cliApp.Name = "sheetvault"
	cliApp.Usage = "keep investigator character sheets"
	cliApp.Action = cli.ShowAppHelp
	cliApp.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to yaml config file",
			Value:   "sheetvault.yaml",
			EnvVars: []string{"SHEETVAULT_CONFIG"},
		},
	}
	cliApp.Commands = commands()

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withApp builds the dependency graph for one command invocation and tears
// it down afterwards.
func withApp(fn func(c *cli.Context, a *app.Application) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := app.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		return fn(c, a)
	}
}
