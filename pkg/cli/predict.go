package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	urfave "github.com/urfave/cli/v2"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/churn"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

var (
	dataFlag = &urfave.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   `Customer record as JSON, e.g. '{"months": 12}'; @path reads a file, - reads stdin`,
		Value:   "{}",
	}

	predictCmd = &urfave.Command{
		Name:   "predict",
		Usage:  "Predict churn for one (possibly partial) customer record",
		Action: cmdPredict,
		Flags: []urfave.Flag{
			dataFlag,
		},
	}
)

func cmdPredict(c *urfave.Context) error {
	app := getConfig(c)
	ctx := c.Context

	raw, err := readRecordArg(c.String(dataFlag.Name), os.Stdin)
	if err != nil {
		return err
	}
	rec, err := parseRecord(raw)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, app.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := churn.LoadSnapshot(ctx, store, pipeline.ChurnSchema)
	if err != nil {
		return err
	}
	engine := churn.NewEngine(churn.WithSnapshot(snap), churn.WithLogger(app.Logger))
	p, err := engine.Predict(ctx, rec)
	if err != nil {
		return err
	}
	return encode(c, p)
}

func readRecordArg(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		b, err := io.ReadAll(stdin)
		return b, errors.Wrap(err, "read record from stdin")
	case strings.HasPrefix(arg, "@"):
		path := strings.TrimPrefix(arg, "@")
		b, err := os.ReadFile(path)
		return b, errors.Wrapf(err, "read record file %s", path)
	default:
		return []byte(arg), nil
	}
}

// parseRecord accepts either a bare record or the {"data": {...}} request body.
func parseRecord(b []byte) (churn.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "parse record JSON")
	}
	if len(m) == 1 {
		if inner, ok := m["data"].(map[string]any); ok {
			return churn.Record(inner), nil
		}
	}
	return churn.Record(m), nil
}
