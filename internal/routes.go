package internal

import (
	"net/http"

	"tuner/internal/controllers"
	"tuner/internal/providers"
	"tuner/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	// behavioral event intake
	routers.Post("/lock", http.HandlerFunc(apiController.Lock))
	routers.Post("/unlock", http.HandlerFunc(apiController.Unlock))
	routers.Post("/star", http.HandlerFunc(apiController.AddStar))
	routers.Post("/unstar", http.HandlerFunc(apiController.RemoveStar))
	routers.Post("/session", http.HandlerFunc(apiController.RecordSession))
	routers.Post("/skip", http.HandlerFunc(apiController.RecordSkip))
	routers.Post("/complete", http.HandlerFunc(apiController.RecordCompletion))
	routers.Post("/duration", http.HandlerFunc(apiController.SetDuration))

	// read surface
	routers.Get("/list", http.HandlerFunc(apiController.GetRanked))
	routers.Get("/frequencies", http.HandlerFunc(apiController.GetFrequencies))
	routers.Get("/stars", http.HandlerFunc(apiController.GetStars))
	routers.Get("/peaks", http.HandlerFunc(apiController.GetPeaks))
	routers.Get("/peaks/next", http.HandlerFunc(apiController.GetNextPeak))
	routers.Get("/peaks/prev", http.HandlerFunc(apiController.GetPrevPeak))

	// bulk transfer
	routers.Get("/export", http.HandlerFunc(apiController.Export))
	routers.Post("/import", http.HandlerFunc(apiController.Import))

	return routers
}
