package facade

import (
	"errors"

	"github.com/cuemby/catalogd/pkg/catalog"
)

// asCatalogError reports whether err is one of the catalog error
// taxonomy's *Error values, returning its rendered message for the wire
// Envelope's Error field; that includes the taxonomy's Internal errors.
// Errors outside the taxonomy (a payload that fails to decode, an
// unknown operation) are surfaced as gRPC status errors instead (see
// Invoke).
func asCatalogError(err error) (string, bool) {
	var cerr *catalog.Error
	if errors.As(err, &cerr) {
		return cerr.Error(), true
	}
	return "", false
}
