package routes

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEquipmentRouter_UpdateAcceptsPutAndPatch(t *testing.T) {
	e := echo.New()
	runEquipmentRouter(e.Group("/api"), nil, nil, nil, zap.NewNop())

	methods := map[string]bool{}
	for _, r := range e.Routes() {
		if r.Path == "/api/equipment/:id" {
			methods[r.Method] = true
		}
	}

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.True(t, methods[m], "метод %s не зарегистрирован", m)
	}
}
