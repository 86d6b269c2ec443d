package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

func dispatch(t *testing.T, router RouterProviderInterface, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		mux.Handle(route.Url, route.Handler)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, url, nil))
	return rec
}

func TestRouterDispatchesByMethod(t *testing.T) {
	router := NewRouterProvider()
	router.Get("/settings", namedHandler("get"))
	router.Put("/settings", namedHandler("put"))

	rec := dispatch(t, router, http.MethodGet, "/settings")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "get", rec.Body.String())

	rec = dispatch(t, router, http.MethodPut, "/settings")
	assert.Equal(t, "put", rec.Body.String())
}

func TestRouterSharesOnePatternPerURL(t *testing.T) {
	router := NewRouterProvider()
	router.Get("/workouts", namedHandler("get"))
	router.Post("/workouts", namedHandler("post"))
	router.Delete("/workouts", namedHandler("delete"))

	routes := router.GetRoutes()
	require.Len(t, routes, 1, "one route entry per URL regardless of method count")
	assert.Equal(t, "/workouts", routes[0].Url)
}

func TestRouterRejectsUnregisteredMethod(t *testing.T) {
	router := NewRouterProvider()
	router.Get("/schedule", namedHandler("get"))

	rec := dispatch(t, router, http.MethodDelete, "/schedule")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterPreservesRegistrationOrder(t *testing.T) {
	router := NewRouterProvider()
	router.Post("/auth/login", namedHandler("a"))
	router.Get("/schedule", namedHandler("b"))
	router.Get("/workouts", namedHandler("c"))

	routes := router.GetRoutes()
	require.Len(t, routes, 3)
	assert.Equal(t, "/auth/login", routes[0].Url)
	assert.Equal(t, "/schedule", routes[1].Url)
	assert.Equal(t, "/workouts", routes[2].Url)
}
