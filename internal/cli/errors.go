package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"postpilot/internal/api"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind string, id int) error {
	return notFoundError{kind: kind, id: strconv.Itoa(id)}
}

// reportedError marks an error already printed to stderr.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// backendErr names a failed backend call by its detail text, or as a missing
// draft when the backend answered 404 for one.
func backendErr(op string, draftID int, err error) error {
	if draftID > 0 && api.IsNotFound(err) {
		return errNotFound("draft", draftID)
	}
	return fmt.Errorf("%s: %s", op, api.Message(err))
}

func parseID(kind, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, s)
	}
	return n, nil
}
