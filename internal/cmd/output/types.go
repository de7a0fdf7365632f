package output

import "io"

// Handler renders command results in a single output format.
type Handler[T any] interface {
	// Writer returns the destination of rendered output.
	Writer() io.Writer

	// HandleResult renders one result.
	HandleResult(item T) error

	// HandleResults renders a collection of results.
	HandleResults(items ...T) error

	// HandleError renders err. Structured handlers encode it and return nil
	// unless encoding fails, the text handler returns err unchanged.
	HandleError(err error) error
}

// WriteFunc writes the part of a listing that depends only on the item count,
// such as a header or footer.
type WriteFunc[T any] func(w io.Writer, count int)

// Printer formats items of type T for the text handler.
type Printer[T any] interface {
	// Header is called once before the first Item.
	Header(w io.Writer, count int)

	// SetHeader replaces the Header function.
	SetHeader(fn WriteFunc[T])

	// Item prints one element.
	Item(w io.Writer, elem T) error

	// Footer is called once after the last Item.
	Footer(w io.Writer, count int)

	// SetFooter replaces the Footer function.
	SetFooter(fn WriteFunc[T])
}

// ResultsPayload wraps a list of results under the "results" key.
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ResultPayload wraps a single result under the "result" key.
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ErrorPayload wraps a failure message under the "error" key.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}

// ReportError renders err through h and always returns a non-nil error,
// so a command fails even when the error was written as a structured payload.
func ReportError[T any](h Handler[T], err error) error {
	if err == nil {
		return nil
	}
	if hErr := h.HandleError(err); hErr != nil && hErr != err {
		return hErr
	}
	return err
}
