package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/plantgen/sim"
	"github.com/inference-sim/plantgen/sim/fit"
)

// rmseWarnThreshold flags fits whose RMSE is large relative to the data.
const rmseWarnThreshold = 0.1

var fitConfigPath string

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the leading polynomial coefficient to measured data and report RMSE",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sim.LoadCalibrationConfig(fitConfigPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cfg.Fit == nil {
			logrus.Fatalf("Calibration file %s has no fit section", fitConfigPath)
		}
		res, err := fit.FitPoly(cfg.Fit.X, cfg.Fit.Y, cfg.Fit.FixedCoefs, cfg.Fit.InitialGuess)
		if err != nil {
			logrus.Fatalf("Fit failed: %v", err)
		}
		if scale := maxAbs(cfg.Fit.Y); scale > 0 && res.RMSE/scale > rmseWarnThreshold {
			logrus.Warnf("RMSE %.4g is %.0f%% of the data range; fit may be invalid", res.RMSE, 100*res.RMSE/scale)
		}
		fmt.Printf("a=%g\nrmse=%g\n", res.A, res.RMSE)
	},
}

func maxAbs(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

func init() {
	fitCmd.Flags().StringVar(&fitConfigPath, "config", "", "Path to calibration YAML with a fit section")
	_ = fitCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(fitCmd)
}
