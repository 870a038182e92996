// Package testutil builds synthetic churn datasets for tests.
package testutil

import (
	"math/rand"
	"strconv"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

// ChurnFrame returns n rows carrying every churn schema column plus the
// label. Customers with old equipment relative to tenure, or heavy overage,
// churn more often. About 2% of numeric cells are "NA".
func ChurnFrame(n int, seed int64) *data.Frame {
	rng := rand.New(rand.NewSource(seed))
	schema := pipeline.ChurnSchema
	header := append(schema.Names(), pipeline.LabelColumn, "Customer_ID")

	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, len(header))
		vals := make(map[string]float64, schema.Len())
		for j, f := range schema.Fields {
			if f.Kind != pipeline.Numeric {
				continue
			}
			var v float64
			switch f.Name {
			case "months":
				v = float64(6 + rng.Intn(55))
			case "eqpdays":
				v = float64(rng.Intn(1500))
			case "uniqsubs", "actvsubs", "phones", "models":
				v = float64(1 + rng.Intn(4))
			case "change_mou", "change_rev":
				v = rng.NormFloat64() * 50
			default:
				v = rng.ExpFloat64() * 100
			}
			vals[f.Name] = v
			if rng.Float64() < 0.02 {
				row[j] = "NA"
			} else {
				row[j] = strconv.FormatFloat(v, 'f', 4, 64)
			}
		}
		row[schema.Index("refurb_new")] = pick(rng, 0.85, "N", "R")
		row[schema.Index("creditcd")] = pick(rng, 0.7, "Y", "N")

		score := vals["eqpdays"]/(vals["months"]+1)/20 + vals["ovrmou_Mean"]/200
		churn := score > 1
		if rng.Float64() < 0.1 {
			churn = !churn
		}
		row[len(header)-2] = "0"
		if churn {
			row[len(header)-2] = "1"
		}
		row[len(header)-1] = strconv.Itoa(1000000 + i)
		rows[i] = row
	}
	f, err := data.NewFrame(header, rows)
	if err != nil {
		panic(err)
	}
	return f
}

func pick(rng *rand.Rand, p float64, a, b string) string {
	if rng.Float64() < p {
		return a
	}
	return b
}
