//go:build mage

// Package main provides build targets for the dustnbones project using Mage.
//
// Usage:
//
//	mage build          Compile dustnbones binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests, skipping the sandbox suite
//	mage test:golden    Rewrite the view golden files
//	mage lint           Run golangci-lint
//	mage sandbox        Serve the in-memory backend on localhost:3000
//	mage clean          Remove build artifacts
//	mage install        Install dustnbones to GOPATH/bin
package main
