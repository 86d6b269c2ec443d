package internal

import (
	"net/http"

	"fitsyncd/internal/controllers"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/auth/register", http.HandlerFunc(apiController.Register))
	routers.Post("/auth/login", http.HandlerFunc(apiController.Login))
	routers.Post("/auth/logout", http.HandlerFunc(apiController.Logout))
	routers.Post("/auth/password", http.HandlerFunc(apiController.ChangePassword))

	routers.Get("/schedule", http.HandlerFunc(apiController.GetSchedule))
	routers.Post("/schedule/workouts", http.HandlerFunc(apiController.AddScheduleWorkout))
	routers.Delete("/schedule/workouts", http.HandlerFunc(apiController.DeleteScheduleWorkout))

	routers.Get("/workouts", http.HandlerFunc(apiController.GetWorkouts))
	routers.Post("/workouts", http.HandlerFunc(apiController.AddWorkoutRecord))

	routers.Get("/settings", http.HandlerFunc(apiController.GetSettings))
	routers.Put("/settings", http.HandlerFunc(apiController.UpdateSettings))
	return routers
}
