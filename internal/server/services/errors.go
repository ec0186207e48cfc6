package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soundhub/internal/common"
)

// domainErrors pass through the service boundary unchanged.
var domainErrors = []error{
	common.ErrValidation,
	common.ErrConflict,
	common.ErrNotFound,
	common.ErrNoOp,
	common.ErrInvalidCredentials,
	common.ErrIncorrectPassword,
	common.ErrUnauthenticated,
	common.ErrForbidden,
}

// internalError downgrades storage and unexpected failures to
// common.ErrInternal, keeping the cause in the message.
func internalError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", common.ErrInternal, op, err)
}
