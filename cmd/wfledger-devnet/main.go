package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"xdao.co/wfledger/devnet"
	"xdao.co/wfledger/internal/logging"
	"xdao.co/wfledger/metrics"
	"xdao.co/wfledger/storage"
	"xdao.co/wfledger/storage/registry"
	"xdao.co/wfledger/transport/grpcstream"
	"xdao.co/wfledger/workflow"

	_ "xdao.co/wfledger/storage/localfs"
	_ "xdao.co/wfledger/storage/memory"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		listen        string
		metricsListen string
		backend       string
		listBackends  bool
		logLevel      string
		logConsole    bool
	)
	cmd := &cobra.Command{
		Use:           "wfledger-devnet",
		Short:         "Development validator for the workflow-dependency family",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listBackends {
				for _, b := range registry.List() {
					if b.Description == "" {
						fmt.Fprintln(out, b.Name)
						continue
					}
					fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
				}
				return nil
			}

			log, err := logging.New(errOut, logLevel, logConsole)
			if err != nil {
				return err
			}
			state, closeFn, err := registry.Open(backend)
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer closeFn()
			}

			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			var metricsLis net.Listener
			if metricsListen != "" {
				metricsLis, err = net.Listen("tcp", metricsListen)
				if err != nil {
					_ = lis.Close()
					return err
				}
			}
			log.Info().Str("listen", lis.Addr().String()).Str("backend", backend).Msg("devnet listening")
			return serve(cmd.Context(), lis, metricsLis, state, log)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&listen, "listen", "127.0.0.1:4004", "gRPC listen address")
	fs.StringVar(&metricsListen, "metrics-listen", "127.0.0.1:9464", "Prometheus /metrics listen address; empty disables")
	fs.StringVar(&backend, "state", "memory", "state backend name")
	fs.BoolVar(&listBackends, "list-backends", false, "List supported state backends and exit")
	fs.StringVar(&logLevel, "log-level", "info", "log level")
	fs.BoolVar(&logConsole, "log-console", false, "human-readable log output")
	registry.RegisterFlags(fs)

	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

// serve runs the validator on lis, and /metrics on metricsLis when it is not
// nil, until ctx is done.
func serve(ctx context.Context, lis, metricsLis net.Listener, state storage.State, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	v, err := devnet.New(state, log, devnet.Options{
		FamilyName:    workflow.FamilyName,
		FamilyVersion: workflow.FamilyVersion,
		Metrics:       metrics.NewPrometheusCollector(reg),
	})
	if err != nil {
		return err
	}

	s := grpc.NewServer()
	grpcstream.RegisterValidatorServer(s, &grpcstream.Server{Handler: v, Log: log})

	var httpSrv *http.Server
	if metricsLis != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.Serve(metricsLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	go func() {
		<-ctx.Done()
		s.GracefulStop()
		if httpSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}
	}()

	return s.Serve(lis)
}
