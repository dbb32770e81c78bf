package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/plantgen/sim"
)

var (
	deathMaxAxes   int
	deathMinAxes   int
	deathBolting   float64
	deathFlowering float64
	deathEmergence []float64
)

var deathCmd = &cobra.Command{
	Use:   "death",
	Short: "Schedule axis stop-growing times from emergence times",
	Run: func(cmd *cobra.Command, args []string) {
		window := sim.DeathWindow{BoltingTT: deathBolting, FloweringTT: deathFlowering}
		stops, err := sim.DecideTimeOfDeath(deathMaxAxes, deathMinAxes, deathEmergence, window)
		if err != nil {
			logrus.Fatalf("Scheduling failed: %v", err)
		}
		out := make([]string, len(stops))
		for i, s := range stops {
			out[i] = s.String()
		}
		fmt.Println(strings.Join(out, ","))
	},
}

func init() {
	deathCmd.Flags().IntVar(&deathMaxAxes, "max", 0, "Number of axes alive at bolting")
	deathCmd.Flags().IntVar(&deathMinAxes, "min", 0, "Number of axes alive at flowering")
	deathCmd.Flags().Float64Var(&deathBolting, "bolting", 0, "Bolting thermal time")
	deathCmd.Flags().Float64Var(&deathFlowering, "flowering", 0, "Flowering thermal time")
	deathCmd.Flags().Float64SliceVar(&deathEmergence, "emergence", nil, "Comma-separated emergence thermal times, one per axis")
	for _, name := range []string{"max", "min", "bolting", "flowering", "emergence"} {
		_ = deathCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(deathCmd)
}
