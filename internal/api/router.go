package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// Register and login are public; every other route runs behind
// AuthMiddleware. events, if non-nil, is served at GET /events.
func NewRouter(svc *mealservice.Service, authCfg AuthConfig, events *sse.Broker) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	if authCfg.Mode == AuthModeJWT {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authCfg))

		r.Get("/household", h.GetHousehold)
		r.Patch("/household", h.UpdateHousehold)

		r.Get("/tags", h.ListTags)
		r.Get("/tags/types", h.TagTypes)
		r.Post("/tags", h.CreateTag)
		r.Patch("/tags/{id}", h.UpdateTag)
		r.Delete("/tags/{id}", h.DeleteTag)

		r.Get("/recipes", h.ListRecipes)
		r.Post("/recipes", h.CreateRecipe)
		r.Get("/recipes/{id}", h.GetRecipe)
		r.Patch("/recipes/{id}", h.UpdateRecipe)
		r.Delete("/recipes/{id}", h.DeleteRecipe)

		r.Get("/rules", h.ListRules)
		r.Post("/rules/constraint/max_meals_per_week_by_tag", h.CreateMaxMealsRule)
		r.Post("/rules/action/remind_offset_days_before_dinner", h.CreateReminderRule)
		r.Patch("/rules/{id}", h.UpdateRule)
		r.Delete("/rules/{id}", h.DeleteRule)

		r.Get("/plans/{week}", h.GetPlan)
		r.Put("/plans/{week}/entry", h.SetEntry)
		r.Delete("/plans/{week}/entry", h.DeleteEntry)
		r.Post("/plans/{week}/validate", h.ValidatePlan)
		r.Get("/plans/{week}/export.ics", h.ExportCalendar)

		if events != nil {
			r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
				events.Serve(w, r, HouseholdFrom(r.Context()))
			})
		}
	})

	return r
}
