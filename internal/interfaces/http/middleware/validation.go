package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/projectmgmt/backend/internal/domain/task"
	"github.com/projectmgmt/backend/internal/interfaces/http/dto"
)

var setupOnce sync.Once

// SetupValidator reports fields by their JSON names and registers the
// taskstatus and taskpriority tags on gin's validator. Safe to call more
// than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			_, err := task.ParseStatus(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
			_, err := task.ParsePriority(fl.Field().String())
			return err == nil
		})
	})
}

// HandleValidationError answers a failed ShouldBind. Field errors are a 400
// listed in error.details, an oversized body is a 413 and anything else is
// reported as bad JSON.
func HandleValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortTooLarge(c, tooLarge.Limit)
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error(), GetRequestID(c)))
		return
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "taskstatus":
		return "Must be one of: " + joinStatuses()
	case "taskpriority":
		return "Must be one of: " + joinPriorities()
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	default:
		return "Invalid value"
	}
}

func joinStatuses() string {
	out := make([]string, 0, 4)
	for _, s := range task.Statuses() {
		out = append(out, string(s))
	}
	return strings.Join(out, ", ")
}

func joinPriorities() string {
	out := make([]string, 0, 5)
	for _, p := range task.Priorities() {
		out = append(out, string(p))
	}
	return strings.Join(out, ", ")
}
