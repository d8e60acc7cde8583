package news

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the stage that produced it.
type Kind string

const (
	KindFetch   Kind = "fetch"
	KindParse   Kind = "parse"
	KindWrite   Kind = "write"
	KindPublish Kind = "publish"
)

// Error describes a failure in one stage of the pipeline. Op names the
// operation and its target, e.g. "GET https://example.com/".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
