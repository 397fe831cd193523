//go:build tools
// +build tools

// Package tools pins the code generators run by go generate (mockgen),
// so that they are versioned in go.mod like any other dependency.
package linechat

import (
	_ "go.uber.org/mock/mockgen"
)
