package internal

import (
	"net/http"
	"scoreboard/internal/controllers"
	"scoreboard/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/state", http.HandlerFunc(apiController.GetState))

	routers.Post("/goal", http.HandlerFunc(apiController.Goal))
	routers.Post("/timeout", http.HandlerFunc(apiController.Timeout))
	routers.Post("/undo", http.HandlerFunc(apiController.Undo))
	routers.Post("/period", http.HandlerFunc(apiController.Period))

	routers.Post("/timer/toggle", http.HandlerFunc(apiController.ToggleTimer))
	routers.Post("/timer/reset", http.HandlerFunc(apiController.ResetTimer))
	routers.Post("/timer/set", http.HandlerFunc(apiController.SetClock))
	routers.Post("/timer/adjust", http.HandlerFunc(apiController.AdjustClock))
	routers.Post("/visibility", http.HandlerFunc(apiController.Visibility))
	routers.Post("/sound/toggle", http.HandlerFunc(apiController.ToggleSound))

	routers.Post("/edit", http.HandlerFunc(apiController.Edit))
	routers.Post("/teams/score", http.HandlerFunc(apiController.SetScore))
	routers.Post("/teams/name", http.HandlerFunc(apiController.RenameTeam))
	routers.Post("/teams/logo", http.HandlerFunc(apiController.UploadLogo))
	routers.Post("/teams/order", http.HandlerFunc(apiController.ReorderTeams))
	routers.Post("/teams/move", http.HandlerFunc(apiController.MoveTeam))
	routers.Post("/teams/swap", http.HandlerFunc(apiController.SwapTeam))
	routers.Post("/teams/defaults", http.HandlerFunc(apiController.ResetTeamDefaults))

	routers.Post("/game/new", http.HandlerFunc(apiController.NewGame))
	routers.Post("/game/reset", http.HandlerFunc(apiController.ResetGame))
	return routers
}
