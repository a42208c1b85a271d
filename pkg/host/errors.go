package host

import "errors"

var (
	// ErrUnreachable means no validated session could be obtained
	// within the acquisition attempt budget.
	ErrUnreachable = errors.New("host unreachable")

	// ErrUnsafePath rejects destination directories too dangerous to
	// use blindly (empty, root, parent or same-dir references).
	ErrUnsafePath = errors.New("unsafe destination path")

	// ErrNotEmpty means a destination already holds nonzero-size
	// content for a requested entry and overwrite was not permitted.
	ErrNotEmpty = errors.New("destination not empty")

	// ErrNotListening means nothing bound the expected port within the
	// readiness bound.
	ErrNotListening = errors.New("port not listening")

	// ErrPipeMissing means a relay pipe was not observed within the
	// readiness bound.
	ErrPipeMissing = errors.New("relay pipe missing")

	// ErrMismatch is a post-transfer verification failure.
	ErrMismatch = errors.New("tree mismatch")

	// ErrMissingTool means a required remote tool is not installed.
	ErrMissingTool = errors.New("required tool not installed")
)
