// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle wraps the text-completion service the extraction stages
// consult for tasks that resist pattern matching: normalizing price
// formulas and recovering scoring rules from unstructured text.
//
// The contract is deliberately thin: a natural-language instruction in,
// free text out. A response beginning with "Error:" signals the service is
// unreachable or misconfigured; callers must treat it as a stage failure
// and fall through, never parse it as content.
package oracle

import (
	"context"
	"strings"
)

// ErrorPrefix marks a transport-level failure surfaced in-band by the
// completion service.
const ErrorPrefix = "Error:"

// Client issues one completion request. Implementations must be safe for
// concurrent use; tests supply a mock.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IsFailure reports whether a completion response must not be parsed as
// content: transport errors and in-band "Error:" responses alike.
func IsFailure(resp string, err error) bool {
	return err != nil || strings.HasPrefix(strings.TrimSpace(resp), ErrorPrefix)
}
