package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ftp-reaper",
	Short: "Delete old files from remote FTP directories",
	Long: `ftp-reaper walks remote directory trees and deletes every regular file
older than the configured max age. Directories and younger files are kept.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
