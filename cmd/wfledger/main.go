package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"xdao.co/wfledger/client"
	"xdao.co/wfledger/config"
	"xdao.co/wfledger/fault"
	"xdao.co/wfledger/internal/logging"
	"xdao.co/wfledger/transport/grpcstream"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1 // the request did not succeed
	exitUsage   = 2
	exitProcess = 3 // key or configuration failure
)

// dialValidator opens the transport to the configured validator. Tests
// replace it with an in-memory validator.
var dialValidator = func(cfg config.Config) (client.Transport, func() error, error) {
	c, err := grpcstream.Dial(cfg.ValidatorURL, grpcstream.DialOptions{Timeout: cfg.DialTimeout})
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(&app{out: out, errOut: errOut})
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(errOut, "error: %v\n", ee.err)
		}
		return ee.code
	}
	// Anything cobra rejects before a command runs is a usage problem.
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitUsage
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

// failure classifies err: key and configuration faults end the process with
// a distinct code, everything else is a failed request.
func failure(err error) error {
	if fault.IsProcessFatal(err) {
		return &exitError{code: exitProcess, err: err}
	}
	return &exitError{code: exitFailed, err: err}
}

type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.Config
	log    zerolog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wfledger",
		Short:         "Submit and read workflow dependency graphs on a validator network",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if err := config.Bind(v, cmd.Flags()); err != nil {
				return failure(err)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return failure(err)
			}
			log, err := logging.New(a.errOut, cfg.LogLevel, cfg.LogConsole)
			if err != nil {
				return failure(err)
			}
			a.cfg, a.log = cfg, log
			return nil
		},
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(newCreateCmd(a), newGetCmd(a), newKeyCmd(a))
	return root
}
