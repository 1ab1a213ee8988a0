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

// generate_keys creates the key a test station signs its run reports with,
// and the verifier key the results server checks them against.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/google/ddrtest/cmd/generate_keys/impl"
)

var (
	keyName  = flag.String("key_name", "", "Station name for the key. Defaults to the Device of --plan, then the host name")
	planFile = flag.String("plan", "", "Test plan whose Device names the station")
	outPriv  = flag.String("out_priv", "", "Output file for the signing key, for ddrtest --signing_key_file")
	outPub   = flag.String("out_pub", "", "Output file for the verifier key, for ddrtest_server --public_key_file")
	print    = flag.Bool("print", false, "Print the signing key, then the verifier key, to stdout")
)

func main() {
	flag.Parse()

	opts := impl.Opts{
		KeyName:  *keyName,
		PlanFile: *planFile,
		OutPriv:  *outPriv,
		OutPub:   *outPub,
	}
	if *print {
		opts.Print = os.Stdout
	}
	if err := impl.Main(opts); err != nil {
		glog.Exitf("Failed to generate keys: %v", err)
	}
}
