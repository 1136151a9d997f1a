// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/osintkit/photoloc/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
