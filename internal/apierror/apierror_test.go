package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("campo inválido"), http.StatusUnprocessableEntity},
		{Conflict("caixa já aberto"), http.StatusConflict},
		{NotFound("pedido não encontrado"), http.StatusNotFound},
		{PartialFailure("loyalty_refund", "estorno falhou", errors.New("boom")), http.StatusOK},
		{Upstream("load_order", errors.New("conn refused")), http.StatusBadGateway},
		{errors.New("untyped"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err))
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Conflict("perdeu a corrida"))
	assert.Equal(t, KindConflict, KindOf(wrapped))

	assert.Equal(t, KindUpstream, KindOf(errors.New("anything")))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Upstream("save_order", cause)

	assert.Contains(t, err.Error(), "timeout")
	assert.ErrorIs(t, err, cause)
}
