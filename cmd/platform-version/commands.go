package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/darkit/platformversion"
	"github.com/darkit/platformversion/channel"
	"github.com/darkit/platformversion/internal/config"
	"github.com/darkit/platformversion/internal/logger"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the platform version string (getPlatformVersion)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.collector.PlatformVersion(cmd.Context()))
			return err
		},
	}
}

func newInfoCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print device information (getDeviceInfo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := a.collector.CollectDeviceInfo(cmd.Context())

			var out []byte
			var err error
			switch a.cfg.Output.Format {
			case config.FormatYAML:
				out, err = yaml.Marshal(map[string]any(info))
			default:
				out, err = json.MarshalIndent(info, "", "  ")
				out = append(out, '\n')
			}
			if err != nil {
				return fmt.Errorf("encode device info: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().String("format", config.FormatJSON, "output format: json, yaml")
	_ = a.v.BindPFlag(config.KeyOutputFormat, cmd.Flags().Lookup("format"))
	return cmd
}

func newIDCommand(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Print the stable device id, creating it on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.ids.Resolve()
			log := logger.FromContext(cmd.Context())
			log.Info().Str("source", string(result.Source)).Bool("persisted", result.Persisted()).Msg("stable device id resolved")

			if !verbose {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), result.Value)
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", result.Value, result.Source, a.ids.Slot().Location())
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print the source and slot location")
	return cmd
}

func newCallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <method> [json-args]",
		Short: "Dispatch one method call on the platform_version channel and print the response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			call := channel.MethodCall{Method: args[0]}
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("arguments are not valid JSON: %s", args[1])
				}
				call.Arguments = json.RawMessage(args[1])
			}

			resp := a.channel.Dispatch(cmd.Context(), call)
			out, err := channel.JSONCodec{}.EncodeResponse(resp)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the " + platformversion.ChannelName + " channel as JSON lines on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logger.FromContext(ctx)
			log.Info().Strs("methods", a.channel.Methods()).Msg("serving channel")
			err := a.channel.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				// SIGINT / SIGTERM
				log.Info().Msg("channel stopped by signal")
				return nil
			}
			if err != nil {
				log.Error().Err(err).Msg("channel stopped")
				return err
			}
			log.Info().Msg("channel closed")
			return nil
		},
	}
}
