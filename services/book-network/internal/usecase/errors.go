package usecase

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrPersistenceFailure = errors.New("record could not be persisted")
	ErrInvalidSession     = errors.New("invalid session token")
)

// ErrOperationNotPermitted is matched by every *OperationNotPermittedError.
var ErrOperationNotPermitted = errors.New("operation not permitted")

// OperationNotPermittedError is returned when an authorization or state guard rejects a call.
type OperationNotPermittedError struct {
	Reason string
}

func (e *OperationNotPermittedError) Error() string {
	return e.Reason
}

func (e *OperationNotPermittedError) Is(target error) bool {
	return target == ErrOperationNotPermitted
}

func notPermitted(reason string) error {
	return &OperationNotPermittedError{Reason: reason}
}

// parseID maps a malformed hex id to ErrNotFound: no record can carry it.
func parseID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrNotFound
	}

	return objectID, nil
}
