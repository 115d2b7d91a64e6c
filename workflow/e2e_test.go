package workflow_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/wfledger/client"
	"xdao.co/wfledger/devnet"
	"xdao.co/wfledger/interpret"
	"xdao.co/wfledger/keys"
	"xdao.co/wfledger/metrics"
	"xdao.co/wfledger/payload"
	"xdao.co/wfledger/storage/memory"
	"xdao.co/wfledger/transport/grpcstream"
	"xdao.co/wfledger/workflow"
)

func startDevnet(t *testing.T, m metrics.Collector) *grpcstream.Client {
	t.Helper()
	v, err := devnet.New(memory.New(), zerolog.Nop(), devnet.Options{
		FamilyName:    workflow.FamilyName,
		FamilyVersion: workflow.FamilyVersion,
		Metrics:       m,
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	grpcstream.RegisterValidatorServer(srv, &grpcstream.Server{Handler: v, Log: zerolog.Nop()})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	tr, err := grpcstream.Dial("bufnet", grpcstream.DialOptions{Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestCreateThenGetOverGRPC(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheusCollector(reg)
	tr := startDevnet(t, m)

	signer, err := keys.ParsePrivateKey(strings.Repeat("5c", 32))
	require.NoError(t, err)
	c := client.New(tr, zerolog.Nop(), client.Options{RequestTimeout: 5 * time.Second, Metrics: m})
	svc := workflow.New(signer, c, zerolog.Nop(), workflow.Options{Metrics: m})

	graph, err := payload.DecodeGraph([]byte(`{"stages":[{"name":"build","depends_on":[]},{"name":"deploy","depends_on":["build"],"retries":3}]}`))
	require.NoError(t, err)

	id, r := svc.Create(context.Background(), graph)
	require.Equal(t, interpret.Submitted, r.Outcome, r.Message)

	got := svc.Get(context.Background(), id)
	require.Equal(t, interpret.Found, got.Outcome, got.Message)
	create, ok := got.Workflow.(payload.Create)
	require.True(t, ok)
	assert.Equal(t, id, create.WorkflowID)
	assert.Equal(t, graph, create.Graph)

	// A second create of the same id is refused by the validator.
	list, err := svc.BuildCreate(id, graph)
	require.NoError(t, err)
	raw, err := c.Submit(context.Background(), list.Marshal())
	require.NoError(t, err)
	dup := interpret.Submit(raw)
	assert.Equal(t, "Error submitting transaction: INVALID_BATCH", dup.Message)

	missing := svc.Get(context.Background(), "no-such-workflow")
	assert.Equal(t, interpret.Rejected, missing.Outcome)
	assert.Equal(t, "Error retrieving workflow: NO_RESOURCE", missing.Message)

	assert.Equal(t, 1.0, series(t, reg, "wfledger_client_results_total", "outcome", "found"))
	assert.Equal(t, 1.0, series(t, reg, "wfledger_devnet_batches_total", "status", "INVALID_BATCH"))
}

func TestSignersOfEveryAlgorithmAreAccepted(t *testing.T) {
	tr := startDevnet(t, nil)
	c := client.New(tr, zerolog.Nop(), client.Options{})

	for _, text := range []string{
		strings.Repeat("01", 32),
		"ed25519:" + strings.Repeat("02", 32),
		"ed448:" + strings.Repeat("03", 57),
	} {
		signer, err := keys.ParsePrivateKey(text)
		require.NoError(t, err)
		_, r := workflow.New(signer, c, zerolog.Nop(), workflow.Options{}).Create(context.Background(), map[string]any{})
		assert.Equal(t, interpret.Submitted, r.Outcome, "%s: %s", signer.Algorithm(), r.Message)
	}
}

// series returns the value of one labelled counter in reg.
func series(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("series %s{%s=%q} not found", name, label, value)
	return 0
}
