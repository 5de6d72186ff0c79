// Command rocketmon is an interactive serial monitor for the rocket avionics
// gateway. Run without arguments it lists the serial ports; given a port it
// connects, prints telemetry as it arrives and sends operator commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	monitor "github.com/luhtfiimanal/rocketmon"
)

var (
	argBaud        int
	argReadTimeout time.Duration
	argDebug       bool
	argTrace       bool
	argHistory     string

	rootCmd = &cobra.Command{
		Use:   "rocketmon [port]",
		Short: "Rocket avionics gateway serial monitor",
		Long: `rocketmon talks to the avionics gateway over its USB serial port.
Without a port argument it lists the available serial ports and points out
the one most likely to be the gateway. With a port it prints telemetry, link,
status, ack and error messages as they arrive and accepts the commands
arm, disarm, status, download, reset, ping, stats, help and quit.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: run,
	}
)

func init() {
	rootCmd.Flags().IntVarP(&argBaud, "baud", "b", monitor.DefaultBaudRate, "Serial baud rate")
	rootCmd.Flags().DurationVar(&argReadTimeout, "read-timeout", monitor.DefaultReadTimeout, "Serial poll timeout")
	rootCmd.Flags().BoolVar(&argDebug, "debug", false, "Set logging level to debug")
	rootCmd.Flags().BoolVar(&argTrace, "trace", false, "Set logging level to trace. Implies debug.")
	rootCmd.Flags().StringVar(&argHistory, "history", "", "File to load and save command history")
}

func setupLogging() {
	log.SetOutput(os.Stderr)
	if argTrace || os.Getenv("ROCKETMON_TRACE") != "" {
		log.SetLevel(log.TraceLevel)
	} else if argDebug || os.Getenv("ROCKETMON_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if _, err := monitor.ListPorts(os.Stdout); err != nil {
			return err
		}
		fmt.Println("\nUsage: rocketmon <port>")
		fmt.Println("Example: rocketmon /dev/ttyACM0")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := newInput(argHistory)
	defer in.Close()

	sess := monitor.NewSession(monitor.Config{
		Port:        args[0],
		BaudRate:    argBaud,
		ReadTimeout: argReadTimeout,
	}, monitor.SerialOpener, os.Stdout)

	return sess.Run(ctx, in)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// session failures have already been shown to the operator
		if !errors.Is(err, monitor.ErrOpen) && !errors.Is(err, monitor.ErrLink) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
