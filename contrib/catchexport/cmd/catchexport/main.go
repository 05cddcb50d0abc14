package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/catchnotes/catchapi.go/contrib/catchexport"
)

func newRootCommand() *cobra.Command {
	var configPath string
	flags := catchexport.NewConfig()

	cmd := &cobra.Command{
		Use:           "catchexport [-c config_file] [--username name --password pass | --token token]",
		Short:         "Export every note of a Catch account to YAML or JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := catchexport.NewConfig()
			if configPath != "" {
				var err error
				if config, err = catchexport.LoadConfig(configPath); err != nil {
					return err
				}
			}

			// Flags given on the command line override the file.
			set := cmd.Flags().Changed
			if set("endpoint") {
				config.Endpoint = flags.Endpoint
			}
			if set("username") {
				config.Username = flags.Username
			}
			if set("password") {
				config.Password = flags.Password
			}
			if set("token") {
				config.Token = flags.Token
			}
			if set("output") {
				config.Output = flags.Output
			}
			if set("format") {
				config.Format = flags.Format
			}
			if set("media-dir") {
				config.MediaDir = flags.MediaDir
			}
			if set("comments") {
				config.Comments = flags.Comments
			}
			if set("page-size") {
				config.PageSize = flags.PageSize
			}
			if set("timeout") {
				config.Timeout = flags.Timeout
			}
			if set("log-level") {
				config.Log.Level = flags.Log.Level
			}
			if set("log-file") {
				config.Log.File = flags.Log.File
			}

			if err := config.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return catchexport.Do(ctx, config)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVar(&flags.Endpoint, "endpoint", flags.Endpoint, "Notes API endpoint")
	f.StringVarP(&flags.Username, "username", "u", "", "Account user name")
	f.StringVarP(&flags.Password, "password", "p", "", "Account password")
	f.StringVar(&flags.Token, "token", "", "Access token, instead of user name and password")
	f.StringVarP(&flags.Output, "output", "o", flags.Output, `Output file path, "-" for stdout`)
	f.StringVarP(&flags.Format, "format", "f", flags.Format, "Output format: yaml or json")
	f.StringVar(&flags.MediaDir, "media-dir", "", "Download image attachments to this directory")
	f.BoolVar(&flags.Comments, "comments", false, "Include the comments of every note")
	f.IntVar(&flags.PageSize, "page-size", flags.PageSize, "Notes fetched per request (1-100)")
	f.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Per-request timeout")
	f.StringVar(&flags.Log.Level, "log-level", flags.Log.Level, "Log level: debug, info, warn or error")
	f.StringVar(&flags.Log.File, "log-file", "", "Log to this file instead of stderr")

	return cmd
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
