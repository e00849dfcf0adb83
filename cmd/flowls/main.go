// Copyright 2026 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command flowls is the language server entrypoint: it wires a
// lspserver.Server onto a stdio JSON-RPC2 connection, the same
// "communicates using JSONRPC2 on stdin and stdout ... run directly as
// a child of an editor process" arrangement cuepls documents for cuelsp
// (cmd/cuepls/main.go via internal/golangorgx/gopls/cmd/serve.go), but
// built directly on go.lsp.dev/jsonrpc2 and go.lsp.dev/protocol instead
// of gopls's internal fork, matching the stack rlch/scaf's server is
// built against (_examples/other_examples/.../lsp-server.go.go).
//
// Grounded on cmd/cuepls/main.go for the cobra-driven entrypoint shape.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/flowdsl/flowls/internal/logging"
	"github.com/flowdsl/flowls/internal/lspserver"
	"github.com/flowdsl/flowls/internal/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "flowls",
		Short: "flowls is a language server for the workflow DSL",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "run the language server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveStdio(cmd.Context(), debug)
		},
	}
	serve.Flags().BoolVar(&debug, "debug", false, "enable debug-level logging")
	root.AddCommand(serve)
	// Running flowls with no subcommand behaves like `flowls serve`,
	// matching an editor that spawns the binary with no arguments and
	// talks JSONRPC2 over the inherited stdio pipes.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// serveStdio blocks until the client disconnects or the process is
// killed.
func serveStdio(ctx context.Context, debug bool) error {
	zl, err := logging.New(debug)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer zl.Sync()

	server, err := lspserver.New(zl, schema.NewPluginCache())
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	stream := jsonrpc2.NewStream(stdrwc{})
	ctx, conn, client := protocol.NewServer(ctx, stream, server, zl)
	server.AttachClient(client)

	<-conn.Done()
	return conn.Err()
}

// stdrwc adapts the process's stdin/stdout into a single
// io.ReadWriteCloser, the shape jsonrpc2.NewStream expects; Close
// closes both halves, matching how an editor-spawned LSP server tears
// down its transport on exit.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdrwc) Close() error {
	err := os.Stdin.Close()
	if werr := os.Stdout.Close(); err == nil {
		err = werr
	}
	return err
}

var _ io.ReadWriteCloser = stdrwc{}
