package payload

type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	BusinessErrorCode        int      `json:"businessErrorCode,omitempty"`
	BusinessErrorDescription string   `json:"businessErrorDescription,omitempty"`
	Error                    string   `json:"error,omitempty"`
	ValidationErrors         []string `json:"validationErrors,omitempty"`
}
