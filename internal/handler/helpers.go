package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/apierror"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps the pricing error taxonomy onto HTTP status codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, pricing.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, pricing.ErrInvalidPrice),
		errors.Is(err, pricing.ErrInvalidParameter),
		errors.Is(err, pricing.ErrInvalidRule):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
