package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Bogdasayen/prostata-exploration/sim/prostate"
	"github.com/Bogdasayen/prostata-exploration/sim/store"
)

var (
	cancerN          int    // Number of individuals
	cancerScreen     string // Screening policy tag
	cancerParamsFile string // YAML parameter file overlaying defaults
	cancerSeed       string // Six comma-separated seed words
	cancerLifeHist   int    // Number of individuals with recorded life histories
	cancerPSARecords bool   // Record every PSA test
	cancerPanel      bool   // Use the biomarker panel cost for PSA tests
	cancerDBPath     string // Optional SQLite output file
	cancerCSVDir     string // Optional CSV output directory
)

// cancerCmd runs the prostate-cancer natural-history model.
var cancerCmd = &cobra.Command{
	Use:   "cancer",
	Short: "Run the prostate-cancer natural-history and screening model",
	Run: func(cmd *cobra.Command, args []string) {
		params := prostate.DefaultParameters()
		if cancerParamsFile != "" {
			if err := loadParams(cancerParamsFile, params); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		if cmd.Flags().Changed("n") {
			params.N = cancerN
		}
		if cmd.Flags().Changed("screening") {
			params.Screen = cancerScreen
		}
		if cmd.Flags().Changed("life-histories") {
			params.NLifeHistories = cancerLifeHist
		}
		if cmd.Flags().Changed("psa-records") {
			params.IncludePSARecords = cancerPSARecords
		}
		if cmd.Flags().Changed("panel") {
			params.Panel = cancerPanel
		}

		var (
			model *prostate.Model
			err   error
		)
		if cancerSeed != "" {
			seed, serr := parseSeed(cancerSeed)
			if serr != nil {
				logrus.Fatalf("%v", serr)
			}
			model, err = prostate.NewModelWithSeed(params, seed)
		} else {
			model, err = prostate.NewModel(params)
		}
		if err != nil {
			logrus.Fatalf("build model: %v", err)
		}

		logrus.Infof("Starting cancer model: n=%d screening=%s", params.N, model.Policy())
		startTime := time.Now()
		results, err := model.Run()
		if err != nil {
			logrus.Fatalf("run: %v", err)
		}
		printCancerResults(results, params.N, time.Since(startTime))

		if cancerDBPath != "" {
			st, err := store.Open(cancerDBPath)
			if err != nil {
				logrus.Fatalf("open output db: %v", err)
			}
			defer st.Close()
			if err := st.WriteCancer(results); err != nil {
				logrus.Fatalf("write output db: %v", err)
			}
			logrus.Infof("Wrote results to %s", cancerDBPath)
		}
		if cancerCSVDir != "" {
			if err := writeCancerCSV(cancerCSVDir, results); err != nil {
				logrus.Fatalf("write csv: %v", err)
			}
			logrus.Infof("Wrote CSV frames to %s", cancerCSVDir)
		}
	},
}

func init() {
	cancerCmd.Flags().IntVar(&cancerN, "n", 100, "Number of individuals to simulate")
	cancerCmd.Flags().StringVar(&cancerScreen, "screening", "noScreening", "Screening policy")
	cancerCmd.Flags().StringVar(&cancerParamsFile, "params", "", "YAML parameter file overlaying the built-in defaults")
	cancerCmd.Flags().StringVar(&cancerSeed, "seed", "", "Package seed as six comma-separated words")
	cancerCmd.Flags().IntVar(&cancerLifeHist, "life-histories", 10, "Number of individuals with recorded life histories")
	cancerCmd.Flags().BoolVar(&cancerPSARecords, "psa-records", false, "Record every PSA test")
	cancerCmd.Flags().BoolVar(&cancerPanel, "panel", false, "Use the biomarker panel cost for PSA tests")
	cancerCmd.Flags().StringVar(&cancerDBPath, "db", "", "Write result frames to this SQLite file")
	cancerCmd.Flags().StringVar(&cancerCSVDir, "csv-dir", "", "Write result frames as CSV files into this directory")
	rootCmd.AddCommand(cancerCmd)
}
