package models

import "errors"

// Application-wide standard errors
var (
	// Common resource errors
	ErrNotFound      = errors.New("resource not found")
	ErrStoryNotFound = errors.New("story not found")
	ErrJobNotFound   = errors.New("job not found")

	// Generation errors
	ErrInvalidStorySchema = errors.New("generated story does not match the expected schema")
	ErrGenerationFailed   = errors.New("story generation failed")

	// Integrity errors
	ErrRootNodeNotFound = errors.New("story root node not found")

	// General request/server errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)
