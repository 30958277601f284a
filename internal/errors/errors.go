// Package errors is the single import for error helpers: matching comes from
// the standard library, construction and wrapping from pkg/errors so that
// wrapped errors carry a stack trace.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

var (
	Is   = stderrors.Is
	As   = stderrors.As
	Join = stderrors.Join

	New       = pkgerrors.New
	Errorf    = pkgerrors.Errorf
	Wrap      = pkgerrors.Wrap
	Wrapf     = pkgerrors.Wrapf
	WithStack = pkgerrors.WithStack
)
