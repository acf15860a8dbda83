package response

// Response is the JSON envelope every API handler renders.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOk    = "OK"
	StatusError = "Error"
)

func Ok(data any) Response {
	return Response{
		Status: StatusOk,
		Data:   data,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}
