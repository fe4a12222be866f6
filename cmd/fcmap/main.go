package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fcmap",
	Short: "Fibre Channel WWPN location crawler",
	Long: `fcmap logs into Cisco MDS and Brocade switches, reads their name
server, alias and zone tables, and keeps a store of where every WWPN is
attached. The store is served over HTTP for lookups.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	crawlCmd.Flags().Bool("dry-run", false, "crawl without writing to the store")
	crawlCmd.Flags().StringP("output", "o", "json", "report format: json or yaml")
	crawlCmd.Flags().Bool("records", false, "include crawled endpoints and zones in the report")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
