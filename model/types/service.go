// Package types defines the contract every registered tool service
// implements. A tool service groups related methods under one dotted
// namespace; a tool path is "<service name>.<method name>".
package types

import (
	"context"
	"reflect"
)

// ApprovalMode mirrors the policy approval modes a tool may declare for
// itself. The empty value means the tool has no opinion and policy decides.
const (
	ApprovalAuto     = "auto"
	ApprovalRequired = "required"
)

type Signatures []Signature

func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature describes one tool method.
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
	// DefaultApprovalMode is the tool's own declared default, used when a
	// matched policy rule defers with "inherit" or no rule matches at all.
	DefaultApprovalMode string
}

// Executable is a function that can be executed.
type Executable func(ctx context.Context, input, output interface{}) error

// Service is a registrable tool service.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

// SourceKeyProvider lets a tool service declare the source key policy rules
// with a by-source-key selector match against. Services without one are
// matched only by namespace and tool path.
type SourceKeyProvider interface {
	SourceKey() string
}
