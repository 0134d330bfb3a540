package api

import "github.com/gin-gonic/gin"

// Envelope is the uniform response wrapper every endpoint returns.
// Success bodies carry data, error bodies carry field-keyed errors.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success writes a success envelope with the given status code.
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error writes an error envelope. errs may be nil for errors that carry
// no field detail.
func Error(c *gin.Context, status int, message string, errs interface{}) {
	if errs == nil {
		errs = map[string][]string{}
	}
	c.JSON(status, Envelope{
		Status:  "error",
		Message: message,
		Errors:  errs,
	})
}
