package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/smart-agence/crm-service/internal/errs"
	"github.com/smart-agence/crm-service/internal/logger"
	"github.com/smart-agence/crm-service/internal/model"
	"gorm.io/gorm"
)

func init() {
	// report json field names in validation details
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func respondValidation(c *gin.Context, details ...model.FieldError) {
	c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{Error: "validation failed", Details: details})
}

// respondBindError turns a ShouldBind* failure into a 422 with one entry
// per rejected field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verrs):
		details := make([]model.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, model.FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: ruleMessage(fe),
			})
		}
		respondValidation(c, details...)
	case errors.As(err, &typeErr):
		respondValidation(c, model.FieldError{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: "must be of type " + typeErr.Type.String(),
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		respondValidation(c, model.FieldError{Field: "body", Rule: "json", Message: "malformed JSON"})
	case errors.Is(err, io.EOF):
		respondValidation(c, model.FieldError{Field: "body", Rule: "required", Message: "request body is empty"})
	default:
		respondValidation(c, model.FieldError{Field: "body", Rule: "invalid", Message: err.Error()})
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "value is not a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "failed on the '" + fe.Tag() + "' rule"
}

// respondError maps service errors onto status codes. Anything unknown is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrAgentNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "agent not found"})
	case errors.Is(err, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "ticket not found"})
	case errors.Is(err, errs.ErrUnknownAgent), errors.Is(err, gorm.ErrForeignKeyViolated):
		respondValidation(c, model.FieldError{Field: "agent_id", Rule: "exists", Message: "agent does not exist"})
	case errors.Is(err, errs.ErrEmailTaken), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "email already registered"})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
	}
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondValidation(c, model.FieldError{Field: "id", Rule: "type", Message: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// parsePage reads skip/limit with the API defaults. Out-of-range values are
// passed through; the service turns them into an empty page.
func parsePage(c *gin.Context, defaultLimit int) (offset, limit int, ok bool) {
	offset, limit = 0, defaultLimit
	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip", &offset}, {"limit", &limit}} {
		v, present := c.GetQuery(p.name)
		if !present {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			respondValidation(c, model.FieldError{Field: p.name, Rule: "type", Message: "must be an integer"})
			return 0, 0, false
		}
		*p.dst = n
	}
	return offset, limit, true
}
