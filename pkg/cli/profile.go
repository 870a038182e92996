package cli

import (
	urfave "github.com/urfave/cli/v2"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/churn"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

var profileCmd = &urfave.Command{
	Name:   "profile",
	Usage:  "Print the fallback values built from the reference dataset",
	Action: cmdProfile,
}

func cmdProfile(c *urfave.Context) error {
	app := getConfig(c)
	store, err := openStore(c.Context, app.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := churn.LoadProfile(c.Context, store, pipeline.ChurnSchema)
	if err != nil {
		return err
	}
	return encode(c, p.Map())
}
