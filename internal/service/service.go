// Package service implements Circle's business rules on top of the stores.
//
// Services authorize callers, enforce label and friendship invariants, and
// return domain errors from internal/errors. Handlers never talk to a store
// directly.
package service

import (
	"errors"

	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/store"
	"github.com/circleapp/circle-server/internal/validation"
)

// validate is shared by every service for request structs.
var validate = validation.New()

// notFound converts a store miss into a NOT_FOUND domain error with msg.
// Any other error is returned unchanged.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg).WithCause(err)
	}
	return err
}

// isNotFound reports whether err is a store miss or a NOT_FOUND domain error.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, domainerrors.ErrNotFound)
}
