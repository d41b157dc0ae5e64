package domain

// TruncationMarker is appended to a stream cut at the policy's byte cap.
const TruncationMarker = "\n... (output truncated)"

type ExitStatus string

const (
	ExitStatusReported ExitStatus = "reported"
	ExitStatusInferred ExitStatus = "inferred"
	ExitStatusUnknown  ExitStatus = "unknown"
)

// ExecOutput is what a session hands back for one command.
type ExecOutput struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	ExitStatus ExitStatus
}

type ExecutionResult struct {
	ExecutionID     string  `json:"execution_id,omitempty"`
	ExitCode        int     `json:"exit_code"`
	Stdout          string  `json:"stdout"`
	Stderr          string  `json:"stderr"`
	Success         bool    `json:"success"`
	Error           *string `json:"error"`
	StdoutTruncated bool    `json:"stdout_truncated,omitempty"`
	StderrTruncated bool    `json:"stderr_truncated,omitempty"`
}

func CompletedResult(exitCode int, stdout, stderr string) ExecutionResult {
	return ExecutionResult{
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Success:  exitCode == 0,
	}
}

func FailedResult(message string) ExecutionResult {
	return ExecutionResult{
		ExitCode: -1,
		Success:  false,
		Error:    &message,
	}
}

func (r ExecutionResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}

	return *r.Error
}

// Truncate keeps the first limit bytes of s and appends TruncationMarker when s is longer.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}

	return s[:limit] + TruncationMarker, true
}
