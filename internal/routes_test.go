package internal

import (
	"testing"

	"fitsyncd/internal/controllers"
	"fitsyncd/internal/structures"
	"fitsyncd/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRoutesRegistersAllEndpoints(t *testing.T) {
	api := controllers.NewApiController(&testutil.MockLogger{}, nil, nil, nil, nil)
	router := InitRoutes(api, &structures.Config{})

	urls := make(map[string]bool)
	for _, route := range router.GetRoutes() {
		require.NotNil(t, route.Handler)
		urls[route.Url] = true
	}

	for _, url := range []string{
		"/auth/register",
		"/auth/login",
		"/auth/logout",
		"/auth/password",
		"/schedule",
		"/schedule/workouts",
		"/workouts",
		"/settings",
	} {
		assert.True(t, urls[url], url)
	}
}
