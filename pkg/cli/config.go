package cli

import (
	urfave "github.com/urfave/cli/v2"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/config"
)

var (
	outputFlag = &urfave.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Path of the YAML file to write",
		Required: true,
	}

	configCmd = &urfave.Command{
		Name:  "config",
		Usage: "Inspect or save the resolved configuration",
		Subcommands: []*urfave.Command{
			{
				Name:  "show",
				Usage: "Print the resolved configuration",
				Action: func(c *urfave.Context) error {
					return encode(c, getConfig(c).Config)
				},
			},
			{
				Name:  "save",
				Usage: "Write the resolved configuration as YAML",
				Flags: []urfave.Flag{outputFlag},
				Action: func(c *urfave.Context) error {
					return config.Save(c.String(outputFlag.Name), getConfig(c).Config)
				},
			},
		},
	}
)
