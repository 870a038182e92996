package main

import "github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/cli"

func main() {
	cli.Execute()
}
