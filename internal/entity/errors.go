package entity

import "errors"

// Domain errors
var (
	// Chat errors. The messages of ErrMissingField and ErrUnsupportedModel
	// are part of the API contract: validation wraps them so the client sees
	// "Missing required fields: message, model, storeId" and
	// "Invalid model. Supported models: ...".
	ErrMissingField     = errors.New("Missing required fields")
	ErrUnsupportedModel = errors.New("Invalid model")

	// Import errors
	ErrImportPending = errors.New("import operation still running")

	// Upload errors
	ErrNoFile       = errors.New("No file provided")
	ErrFileTooLarge = errors.New("file too large")
)
