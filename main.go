/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package main

import "github.com/orien/buildlab/cmd"

func main() {
	cmd.Execute()
}
