//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Docs rewrites the snippets in this repository's documents from its own
// sources.
func Docs() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "replace", ".")
}

// DocsCheck reports which documents are out of date without writing.
func DocsCheck() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "replace", ".", "--dry-run")
}
