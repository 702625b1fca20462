package mongoclient

import (
	"errors"
	"strings"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsOnlyDuplicateError is true when every write of a bulk failed on an existing key
func IsOnlyDuplicateError(err error) bool {
	var bulkWriteErrors mongo.BulkWriteException

	if !errors.As(err, &bulkWriteErrors) {
		return mongo.IsDuplicateKeyError(err)
	}

	if len(bulkWriteErrors.WriteErrors) == 0 {
		return false
	}

	for _, bulkWriteErr := range bulkWriteErrors.WriteErrors {
		if !isDup(bulkWriteErr.WriteError) {
			return false
		}
	}

	return true
}

func isDup(err mongo.WriteError) bool {
	return err.Code == 11000 ||
		err.Code == 11001 ||
		err.Code == 12582 ||
		(err.Code == 16460 && strings.Contains(err.Message, " E11000 "))
}

// wrap turns a driver error into the error the store contract names
func wrap(operation string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}

	logger.WithSource("mongo").Errorf("Failed to %s %v", operation, err)

	return apperrors.Persistence(operation, err)
}
