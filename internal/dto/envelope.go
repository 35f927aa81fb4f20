package dto

// Envelope wraps every JSON body the API returns.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Failure(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
