package service

type ValidationCode string

const (
	CodeValid   ValidationCode = "VALID"
	CodeInvalid ValidationCode = "INVALID"
	CodeError   ValidationCode = "ERROR"
)

type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message"`
	Code    ValidationCode `json:"code"`
	Data    any            `json:"data,omitempty"`
}

func validResult(message string) ValidationResult {
	return ValidationResult{Valid: true, Message: message, Code: CodeValid}
}

func invalidResult(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message, Code: CodeInvalid}
}

func errorResult(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message, Code: CodeError}
}
