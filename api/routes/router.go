package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorton/schedtrack-backend/api/controllers"
	"github.com/calebmorton/schedtrack-backend/api/middleware"
	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/internal/auth"
	"github.com/calebmorton/schedtrack-backend/internal/dashboard"
	"github.com/calebmorton/schedtrack-backend/internal/projects"
	"github.com/calebmorton/schedtrack-backend/internal/timetracking"
	"github.com/calebmorton/schedtrack-backend/internal/updaterequests"
	"github.com/calebmorton/schedtrack-backend/internal/users"
	"github.com/calebmorton/schedtrack-backend/internal/weather"
	"github.com/calebmorton/schedtrack-backend/internal/whiteboard"
	"github.com/calebmorton/schedtrack-backend/internal/work"
	"github.com/calebmorton/schedtrack-backend/pkg/auth/session"
	"github.com/calebmorton/schedtrack-backend/pkg/config"
	"github.com/calebmorton/schedtrack-backend/pkg/db"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
	"github.com/calebmorton/schedtrack-backend/pkg/redis"
)

// Services bundles everything the router mounts. Controllers guard nil
// members themselves so a partially wired router still boots.
type Services struct {
	Auth           auth.Service
	Users          *users.Repository
	Projects       projects.Service
	Work           work.Service
	TimeTracking   timetracking.Service
	Dashboard      dashboard.Service
	Weather        weather.Service
	UpdateRequests updaterequests.Service
	Whiteboards    whiteboard.Service
	Audit          audit.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
			r.Get("/me", controllers.AuthMe(svcs.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		// Staff routes: any authenticated manager or scheduler.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Get("/users", controllers.ListUsers(svcs.Users, logg))

			r.Route("/work-items", func(r chi.Router) {
				r.Post("/", controllers.CreateWorkItem(svcs.Work, logg))
				r.Get("/", controllers.ListWorkItems(svcs.Work, logg))
				r.Get("/deleted", controllers.ListDeletedWorkItems(svcs.Work, logg))
				r.Get("/{itemId}", controllers.GetWorkItem(svcs.Work, logg))
				r.Patch("/{itemId}", controllers.UpdateWorkItem(svcs.Work, logg))
				r.Delete("/{itemId}", controllers.DeleteWorkItem(svcs.Work, logg))
				r.Post("/{itemId}/complete", controllers.CompleteWorkItem(svcs.Work, logg))
				r.Post("/{itemId}/restore", controllers.RestoreWorkItem(svcs.Work, logg))
			})

			r.Route("/time-entries", func(r chi.Router) {
				r.Post("/", controllers.CreateTimeEntry(svcs.TimeTracking, logg))
				r.Get("/", controllers.WeekTimeEntries(svcs.TimeTracking, logg))
				r.Get("/summary", controllers.SummaryTimeEntries(svcs.TimeTracking, logg))
				r.Get("/export.csv", controllers.ExportTimeEntriesCSV(svcs.TimeTracking, logg))
				r.Get("/{entryId}", controllers.GetTimeEntry(svcs.TimeTracking, logg))
				r.Patch("/{entryId}", controllers.UpdateTimeEntry(svcs.TimeTracking, logg))
				r.Delete("/{entryId}", controllers.DeleteTimeEntry(svcs.TimeTracking, logg))
			})

			r.Route("/update-requests", func(r chi.Router) {
				r.Post("/", controllers.CreateUpdateRequest(svcs.UpdateRequests, logg))
				r.Get("/", controllers.ListUpdateRequests(svcs.UpdateRequests, logg))
				r.Get("/{requestId}", controllers.GetUpdateRequest(svcs.UpdateRequests, logg))
				r.Patch("/{requestId}", controllers.UpdateUpdateRequest(svcs.UpdateRequests, logg))
				r.Delete("/{requestId}", controllers.DeleteUpdateRequest(svcs.UpdateRequests, logg))
				r.Post("/{requestId}/confirm", controllers.ConfirmUpdateRequestReply(svcs.UpdateRequests, logg))
			})

			r.Route("/whiteboards", func(r chi.Router) {
				r.Post("/", controllers.CreateWhiteboard(svcs.Whiteboards, logg))
				r.Get("/", controllers.ListWhiteboards(svcs.Whiteboards, logg))
				r.Get("/{boardId}", controllers.GetWhiteboard(svcs.Whiteboards, logg))
				r.Patch("/{boardId}", controllers.UpdateWhiteboard(svcs.Whiteboards, logg))
				r.Delete("/{boardId}", controllers.DeleteWhiteboard(svcs.Whiteboards, logg))
			})

			r.Route("/weather", func(r chi.Router) {
				r.Get("/", controllers.WeatherTable(svcs.Weather, logg))
				r.Get("/{projectId}", controllers.ProjectWeather(svcs.Weather, logg))
				r.Post("/{projectId}/refresh", controllers.RefreshProjectWeather(svcs.Weather, logg))
			})

			r.Get("/dashboard", controllers.DashboardOverview(svcs.Dashboard, logg))

			// Project reads stay staff-wide for pickers and weather
			// context; mutations are gated below.
			r.Get("/projects", controllers.ListProjects(svcs.Projects, logg))
			r.Get("/projects/{projectId}", controllers.GetProject(svcs.Projects, logg))
		})

		// Manager routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager(logg))

			r.Post("/projects", controllers.CreateProject(svcs.Projects, logg))
			r.Patch("/projects/{projectId}", controllers.UpdateProject(svcs.Projects, logg))
			r.Delete("/projects/{projectId}", controllers.DeleteProject(svcs.Projects, logg))

			r.Get("/activity", controllers.ListActivity(svcs.Audit, logg))

			r.Post("/admin/work-items/purge", controllers.PurgeWorkItems(svcs.Work, logg))
		})
	})

	return r
}
