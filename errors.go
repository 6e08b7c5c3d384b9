package tecs

import (
	"github.com/rotisserie/eris"
)

// Configuration errors. These indicate a programming mistake and are
// returned synchronously at the call site.
var (
	ErrDuplicateName = eris.New("tecs: name already registered")
	ErrUnknownType   = eris.New("tecs: unknown component type")
	ErrUnknownField  = eris.New("tecs: unknown field")
	ErrReservedField = eris.New("tecs: reserved field name")
	ErrTooManyTypes  = eris.New("tecs: type limit exceeded")
	ErrNotTag        = eris.New("tecs: name is not a tag")
	ErrInvalidValue  = eris.New("tecs: invalid field value")
	ErrUnknownGroup  = eris.New("tecs: unknown system group")
)

// Integrity errors are raised when a query is built against a source
// that cannot be kept up to date incrementally.
var (
	ErrUnindexableSource = eris.New("tecs: query source cannot be persisted")
)

// State errors describe operations against entities in the wrong lifecycle
// state.
var (
	ErrEntityDestroyed = eris.New("tecs: entity destroyed")
	ErrDuplicateKey    = eris.New("tecs: component key already in use")
	ErrDuplicateEntity = eris.New("tecs: entity id already in use")
)

var (
	configurationErrors = []error{
		ErrDuplicateName, ErrUnknownType, ErrUnknownField, ErrReservedField,
		ErrTooManyTypes, ErrNotTag, ErrInvalidValue, ErrUnknownGroup,
	}
	stateErrors = []error{ErrEntityDestroyed, ErrDuplicateKey, ErrDuplicateEntity}
)

// IsConfigurationError reports whether err stems from a setup mistake such
// as a duplicate registration or an unknown type name.
func IsConfigurationError(err error) bool {
	return isAny(err, configurationErrors)
}

// IsIntegrityError reports whether err was raised while building a query
// against an unindexable source.
func IsIntegrityError(err error) bool {
	return eris.Is(err, ErrUnindexableSource)
}

// IsStateError reports whether err was caused by an entity lifecycle
// violation.
func IsStateError(err error) bool {
	return isAny(err, stateErrors)
}

func isAny(err error, targets []error) bool {
	if err == nil {
		return false
	}
	for _, t := range targets {
		if eris.Is(err, t) {
			return true
		}
	}
	return false
}
