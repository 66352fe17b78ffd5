package main

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
	version   = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:     "ptmcmc",
	Short:   "Parallel tempering MCMC sampler with adaptive proposals",
	Long:    `ptmcmc runs a Parallel Tempering MCMC sampler with adaptive SCAM/AM/DE/KDE proposals, one goroutine per temperature rung, with an optional trans-dimensional RJMCMC mode.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ptmcmc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (text|json)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - resumeCmd in resume.go
