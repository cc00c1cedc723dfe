package ingestion

import "fmt"

// UnsupportedFileTypeError is returned for files that are not pdf, doc or docx.
type UnsupportedFileTypeError struct {
	Filename string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s (upload a PDF or DOCX file)", e.Filename)
}

// ExtractionError wraps a failure to read text from a supported file.
type ExtractionError struct {
	Format string
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
