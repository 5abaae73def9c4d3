package queue

import (
	"fmt"

	"github.com/aptakhin/lala-search/internal/models"
)

// classifiedError carries the crawl error taxonomy through the pipeline so
// the processor can record the failure and decide on a retry.
type classifiedError struct {
	errorType models.CrawlErrorType
	message   string
}

func (e *classifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.errorType, e.message)
}

// classify wraps a stage failure with its error type.
func classify(errorType models.CrawlErrorType, format string, args ...interface{}) error {
	return &classifiedError{
		errorType: errorType,
		message:   fmt.Sprintf(format, args...),
	}
}

// classification extracts the error type from a pipeline failure. Anything a
// stage did not classify is unknown.
func classification(err error) (models.CrawlErrorType, string) {
	if classified, ok := err.(*classifiedError); ok {
		return classified.errorType, classified.message
	}
	return models.ErrorTypeUnknown, err.Error()
}
