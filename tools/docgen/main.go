/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Command docgen writes the buildlab CLI reference as Markdown
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/orien/buildlab/cmd"
)

func main() {
	outputDir := filepath.Join("docs", "cli")
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := removeMarkdown(outputDir); err != nil {
		log.Fatalf("failed to clean output directory: %v", err)
	}

	root := cmd.RootCommand()
	disableAutoGenTag(root)

	if err := doc.GenMarkdownTreeCustom(root, outputDir, frontMatter, linkHandler); err != nil {
		log.Fatalf("failed to generate markdown documentation: %v", err)
	}
}

func removeMarkdown(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func disableAutoGenTag(c *cobra.Command) {
	c.DisableAutoGenTag = true
	for _, child := range c.Commands() {
		disableAutoGenTag(child)
	}
}

// frontMatter titles each page after its command, e.g. buildlab_deploy.md becomes "buildlab deploy"
func frontMatter(filename string) string {
	title := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(filename), ".md"), "_", " ")
	return fmt.Sprintf("---\ntitle: %q\n---\n\n", title)
}

func linkHandler(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
}
