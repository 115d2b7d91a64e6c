package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xdao.co/wfledger/client"
	"xdao.co/wfledger/interpret"
	"xdao.co/wfledger/keys"
	"xdao.co/wfledger/payload"
	"xdao.co/wfledger/workflow"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <dependency-graph-file>",
		Short: "Register a dependency graph under a new workflow id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return failure(fmt.Errorf("read dependency graph: %w", err))
			}
			graph, err := payload.DecodeGraph(b)
			if err != nil {
				return failure(err)
			}
			signer, err := keys.LoadSignerFile(a.cfg.KeyFile)
			if err != nil {
				return failure(err)
			}
			svc, closeFn, err := a.service(signer)
			if err != nil {
				return failure(err)
			}
			defer closeFn()

			id, r := svc.Create(cmd.Context(), graph)
			fmt.Fprintln(a.out, "Workflow creation result:")
			fmt.Fprintf(a.out, "Workflow ID: %s\n", id)
			fmt.Fprintf(a.out, "Status: %s\n", r.Message)
			if !r.OK() {
				return &exitError{code: exitFailed}
			}
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <workflow-id>",
		Short: "Read a workflow's stored dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reads are unsigned; no key is loaded.
			svc, closeFn, err := a.service(nil)
			if err != nil {
				return failure(err)
			}
			defer closeFn()

			r := svc.Get(cmd.Context(), args[0])
			fmt.Fprintln(a.out, "Workflow retrieval result:")
			if r.Outcome == interpret.Found {
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, r.Value, "", "  "); err != nil {
					return failure(err)
				}
				fmt.Fprintln(a.out, pretty.String())
				return nil
			}
			fmt.Fprintln(a.out, r.Message)
			return &exitError{code: exitFailed}
		},
	}
}

func (a *app) service(signer keys.Signer) (*workflow.Service, func(), error) {
	tr, closeFn, err := dialValidator(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	c := client.New(tr, a.log, client.Options{RequestTimeout: a.cfg.RequestTimeout})
	svc := workflow.New(signer, c, a.log, workflow.Options{})
	return svc, func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}, nil
}
