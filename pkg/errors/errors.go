package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sqctl/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeAPIAuth       ExitCode = 3
	ExitCodeNotFound      ExitCode = 4
	ExitCodeAPIRequest    ExitCode = 5
	ExitCodeValidation    ExitCode = 6
	ExitCodeNoCommit      ExitCode = 7
	ExitCodeNoImage       ExitCode = 8
	ExitCodeCancellation  ExitCode = 9
	ExitCodeFileOperation ExitCode = 10
)

// Kind classifies failures the resolver can report on its own, as opposed
// to failures passed through from the API.
type Kind string

const (
	KindNone              Kind = ""
	KindNotFound          Kind = "not_found"
	KindNoCommitAvailable Kind = "no_commit_available"
	KindNoImageAvailable  Kind = "no_image_available"
	KindUpstream          Kind = "upstream"
)

type Error struct {
	Code       ExitCode
	Kind       Kind
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// Wrap prefixes the message of err. An *Error keeps its code, kind and
// suggestion; anything else becomes a general error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var wrapped *Error
	if stderrors.As(err, &wrapped) {
		return &Error{
			Code:       wrapped.Code,
			Kind:       wrapped.Kind,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       ExitCodeGeneral,
		Message:    message,
		Underlying: err,
	}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsExitCode(err error, code ExitCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// HandleReturn prints err to stderr and returns the exit code the process
// should terminate with. It does not exit.
func HandleReturn(err error) ExitCode {
	return handle(os.Stderr, err)
}

func handle(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	exitCode := ExitCodeGeneral
	message := err.Error()
	var suggestion string

	var e *Error
	if stderrors.As(err, &e) {
		exitCode = e.Code
		suggestion = e.Suggestion
		if e.Underlying != nil {
			logger.Debug().Err(e.Underlying).Str("kind", string(e.Kind)).Msg(e.Message)
		}
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(w)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, message)

	if suggestion != "" {
		yellow.Fprint(w, "Suggestion: ")
		lines := strings.Split(strings.TrimRight(suggestion, "\n"), "\n")
		for i, line := range lines {
			switch {
			case i == 0:
				fmt.Fprintln(w, line)
			case strings.HasPrefix(line, "  -"):
				cyan.Fprintln(w, line)
			default:
				fmt.Fprintln(w, "            "+line)
			}
		}
	}

	fmt.Fprintln(w)

	return exitCode
}

func APIError(err error) *Error {
	return &Error{
		Code:       ExitCodeAPIRequest,
		Kind:       KindUpstream,
		Message:    "API request failed",
		Underlying: err,
	}
}

func AuthError(err error) *Error {
	return &Error{
		Code:       ExitCodeAPIAuth,
		Kind:       KindUpstream,
		Message:    "Authentication failed",
		Underlying: err,
		Suggestion: "Set SUBQL_ACCESS_TOKEN or add access_token to your config file (sqctl config path)",
	}
}

// NotFoundError reports a project key the backend does not know about.
func NotFoundError(projectKey string) *Error {
	return &Error{
		Code:       ExitCodeNotFound,
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("The project %s not found", projectKey),
		Suggestion: "Check --org and --key, and that your token can access the project.",
	}
}

// NoCommitError reports an existing project whose branch has no commits.
// An unset repository is rendered as an empty string.
func NoCommitError(gitRepository, branch string) *Error {
	return &Error{
		Code:       ExitCodeNoCommit,
		Kind:       KindNoCommitAvailable,
		Message:    fmt.Sprintf("No commit found in git repository %s#%s", gitRepository, branch),
		Suggestion: "Push a commit to the branch, pass another --branch, or set --commit explicitly.",
	}
}

// NoImageError names which image catalog segment ("query" or "indexer")
// came back empty.
func NoImageError(imageType string) *Error {
	return &Error{
		Code:       ExitCodeNoImage,
		Kind:       KindNoImageAvailable,
		Message:    fmt.Sprintf("Not found %s image", imageType),
		Suggestion: fmt.Sprintf("Pass --%s-image-version explicitly.", imageType),
	}
}

func ConfigError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file or set the required environment variables.",
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Code:    ExitCodeValidation,
		Message: message,
	}
}

func CancelledError(operation string) *Error {
	return &Error{
		Code:       ExitCodeCancellation,
		Message:    fmt.Sprintf("Operation cancelled: %s", operation),
		Suggestion: "The operation was interrupted; check `sqctl deployment list` for its state.",
	}
}
