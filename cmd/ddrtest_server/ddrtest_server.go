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

// ddrtest_server collects memory test results from test stations and serves
// them over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/google/ddrtest/cmd/ddrtest_server/impl"
	"github.com/google/ddrtest/internal/attest"
	"golang.org/x/mod/sumdb/note"
)

var (
	listenAddr = flag.String("listen", ":8080", "address:port to listen for requests on")
	dbFile     = flag.String("db_file", "", "Path to a file to be used as sqlite3 storage for results, e.g. /tmp/results.db")
	mysqlURI   = flag.String("mysql_uri", "", "URI for MySQL DB, used instead of --db_file")
	pubKeyFile = flag.String("public_key_file", "", "If set, only runs signed by the note verifier key in this file are accepted")
)

func main() {
	flag.Parse()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var v note.Verifier
	if len(*pubKeyFile) > 0 {
		var err error
		if v, err = attest.LoadVerifier(*pubKeyFile); err != nil {
			glog.Exit(err)
		}
	}

	if err := impl.Main(ctx, impl.ServerOpts{
		ListenAddr: *listenAddr,
		DBFile:     *dbFile,
		MySQLURI:   *mysqlURI,
		Verifier:   v,
	}); err != nil {
		glog.Exitf("Error running server: %v", err)
	}
}
