// Copyright 2026 Google LLC. All Rights Reserved.
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

// Package impl is the implementation of the results server.
package impl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/golang/glog"
	ih "github.com/google/ddrtest/cmd/ddrtest_server/internal/http"
	"github.com/google/ddrtest/internal/results"
	"github.com/gorilla/mux"
	"golang.org/x/mod/sumdb/note"
	"golang.org/x/sync/errgroup"

	_ "github.com/go-sql-driver/mysql" // Load drivers for mysql
	_ "github.com/mattn/go-sqlite3"    // Load drivers for sqlite3
)

// ServerOpts are the options for a server (specified in ddrtest_server.go).
type ServerOpts struct {
	// Where to listen for requests.
	ListenAddr string
	// The file for sqlite3 storage. Exactly one of DBFile and MySQLURI must be set.
	DBFile string
	// URI of a MySQL database.
	MySQLURI string
	// If set, runs must be signed by this key to be accepted.
	Verifier note.Verifier
}

func openStore(opts ServerOpts) (*results.Store, error) {
	switch {
	case len(opts.DBFile) > 0 && len(opts.MySQLURI) > 0:
		return nil, errors.New("only one of DBFile and MySQLURI may be set")
	case len(opts.DBFile) > 0:
		glog.Infof("Connecting to local DB at %q", opts.DBFile)
		return results.Open("sqlite3", opts.DBFile)
	case len(opts.MySQLURI) > 0:
		glog.Infof("Connecting to MySQL DB")
		return results.Open("mysql", opts.MySQLURI)
	}
	return nil, errors.New("DBFile or MySQLURI is required")
}

// Main runs the server until ctx is done.
func Main(ctx context.Context, opts ServerOpts) error {
	store, err := openStore(opts)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	httpListener, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", opts.ListenAddr, err)
	}
	return serve(ctx, httpListener, store, opts.Verifier)
}

func serve(ctx context.Context, l net.Listener, store ih.Store, v note.Verifier) error {
	r := mux.NewRouter()
	ih.NewServer(store, v).RegisterHandlers(r)
	srv := http.Server{
		Handler: r,
	}

	// If either goroutine fails the other is stopped through ctx.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		glog.Infof("HTTP server listening on %s", l.Addr())
		defer glog.Info("HTTP server goroutine done")
		if err := srv.Serve(l); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		glog.Info("Server shutting down")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
