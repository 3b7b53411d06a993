// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bonial-oss/depscan/cmd"
)

func main() {
	err := cmd.NewRootCommand().Execute()
	if err == nil {
		return
	}
	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(os.Stderr, "depscan: "+exitErr.Message)
		}
		os.Exit(exitErr.Code)
	}
	// Flag parse failures and other cobra errors count as usage errors.
	fmt.Fprintln(os.Stderr, "depscan: "+err.Error())
	os.Exit(2)
}
