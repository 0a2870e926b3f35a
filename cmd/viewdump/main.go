// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The viewdump tool captures and inspects core dumps kept in a retained
// memory region.
//
// Usage:
//
//	viewdump [--region FILE] [--config FILE] [--format text|json|yaml] command
//
// The commands are:
//
//	crash:   run the demo program on a simulated target and capture its fault
//	show:    print the core dump in the region
//	collect: archive the core dump in the region and clear it
//	reset:   clear the region
//	list:    list archived core dumps
//	get:     print an archived core dump
//	walk:    recover a call stack from a raw RAM image
//	shell:   browse the archive interactively
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "viewdump: %v\n", err)
		os.Exit(exitCode(err))
	}
}
