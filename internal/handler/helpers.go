package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"caixapos/internal/apierror"
	"caixapos/internal/middleware"
)

var validate = validator.New()

// bindAndValidate binds the JSON body and runs struct validation. On failure
// it writes the 422 envelope and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity,
			apierror.NewValidation(map[string]string{"body": "JSON inválido"}))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := map[string]string{}
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range vErrs {
				fields[fe.Field()] = "falhou na regra '" + fe.Tag() + "'"
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter, writing the 422 envelope on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity,
			apierror.NewValidation(map[string]string{name: "deve ser um UUID válido"}))
		return uuid.Nil, false
	}
	return id, true
}

// storeFromClaims returns the authenticated user's store. Routes using it
// sit behind the auth middleware, so a miss is a programming error and
// yields 401 defensively.
func storeFromClaims(c *gin.Context) (*middleware.AuthClaims, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Não autenticado"))
		return nil, false
	}
	return claims, true
}
