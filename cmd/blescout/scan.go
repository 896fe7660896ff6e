package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srg/blescout/scanner"
)

var scanCmd = newScanCommand()

func newScanCommand() *cobra.Command {
	var (
		flags  scanFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan and print the discovered beacons",
		Long: `Scan performs one advertising scan cycle and prints the beacons it
discovered, ordered by first sighting. Each beacon is reported once per
scan regardless of how many advertising frames it sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q (expected table or json)", format)
			}
			cmd.SilenceUsage = true

			logger, err := configureLogger(cmd, "verbose")
			if err != nil {
				return err
			}

			opts, err := flags.sessionOptions(logger)
			if err != nil {
				return err
			}

			cfg := flags.buildConfig()
			coord := scanner.NewCoordinator(cfg, logger, opts...)
			defer coord.Shutdown()

			status := coord.RequestScan(cmd.Context())
			if status.Kind == scanner.StatusFailed {
				return fmt.Errorf("scan failed: %s", status.Reason)
			}

			beacons := coord.Registry().TopN(cfg.TopN)
			if format == "json" {
				return printJSON(cmd, beacons)
			}
			return printTable(cmd, status, beacons)
		},
	}

	registerScanFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	return cmd
}

func printJSON(cmd *cobra.Command, beacons []scanner.Beacon) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(beacons)
}

func printTable(cmd *cobra.Command, status scanner.Status, beacons []scanner.Beacon) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, status.String())

	if len(beacons) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tRSSI")
	for _, b := range beacons {
		fmt.Fprintf(w, "%s\t%s\t%d\n", b.Name, b.Address, b.RSSI)
	}
	return w.Flush()
}
