package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agriops/plantops-backend/api/controllers"
	"github.com/agriops/plantops-backend/api/middleware"
	authsvc "github.com/agriops/plantops-backend/internal/auth"
	consultsvc "github.com/agriops/plantops-backend/internal/consultations"
	issuesvc "github.com/agriops/plantops-backend/internal/deliveryissues"
	inventorysvc "github.com/agriops/plantops-backend/internal/inventory"
	ledgersvc "github.com/agriops/plantops-backend/internal/ledger"
	ordersvc "github.com/agriops/plantops-backend/internal/orders"
	supportsvc "github.com/agriops/plantops-backend/internal/support"
	"github.com/agriops/plantops-backend/pkg/auth/session"
	"github.com/agriops/plantops-backend/pkg/config"
	"github.com/agriops/plantops-backend/pkg/enums"
	"github.com/agriops/plantops-backend/pkg/logger"
	"github.com/agriops/plantops-backend/pkg/metrics"
	"github.com/agriops/plantops-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth          authsvc.Service
	Register      authsvc.RegisterService
	Inventory     inventorysvc.Service
	Ledger        ledgersvc.Service
	Orders        ordersvc.Service
	Consultations consultsvc.Service
	Support       supportsvc.Service
	Issues        issuesvc.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Idempotency is attached inline on mutating routes: it keys off the fully
	// resolved chi route pattern, which a group-level Use never sees.
	idem := middleware.Idempotency(redisClient, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.Login(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), idem).
			Post("/register", controllers.Register(svcs.Register, logg))
		r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).
			Post("/logout", controllers.Logout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		factoryOrAdmin := middleware.RequireAnyRole(logg, string(enums.UserRoleFactory), string(enums.UserRoleAdmin))
		issueResolvers := middleware.RequireAnyRole(logg, string(enums.UserRoleFactory), string(enums.UserRoleDelivery), string(enums.UserRoleAdmin))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(svcs.Inventory, logg))
			r.Get("/{itemId}", controllers.InventoryGet(svcs.Inventory, logg))
			r.Get("/{itemId}/movements", controllers.InventoryMovements(svcs.Ledger, logg))
			r.With(factoryOrAdmin, idem).Post("/", controllers.InventoryCreate(svcs.Inventory, logg))
			r.With(factoryOrAdmin).Put("/{itemId}", controllers.InventoryUpdate(svcs.Inventory, logg))
			r.With(factoryOrAdmin).Delete("/{itemId}", controllers.InventoryDelete(svcs.Inventory, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.With(idem).Post("/{orderId}/items", controllers.OrderAddItems(svcs.Orders, logg))
			r.With(idem).Put("/{orderId}/items/{itemId}", controllers.OrderUpdateItemQuantity(svcs.Orders, logg))
			r.With(idem).Delete("/{orderId}/items/{itemId}", controllers.OrderRemoveItem(svcs.Orders, logg))
			r.With(factoryOrAdmin, idem).Post("/{orderId}/decision", controllers.OrderDecision(svcs.Orders, logg))
			r.With(factoryOrAdmin).Put("/{orderId}/delivery", controllers.OrderSetDelivery(svcs.Orders, logg))
			r.With(factoryOrAdmin).Delete("/{orderId}/delivery", controllers.OrderClearDelivery(svcs.Orders, logg))
		})

		r.Route("/consultations", func(r chi.Router) {
			r.Get("/", controllers.ConsultationList(svcs.Consultations, logg))
			r.Get("/{consultationId}", controllers.ConsultationDetail(svcs.Consultations, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleFarmer), logg), idem).
				Post("/", controllers.ConsultationCreate(svcs.Consultations, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleExpert), logg)).
				Post("/{consultationId}/schedule", controllers.ConsultationSchedule(svcs.Consultations, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleExpert), logg)).
				Post("/{consultationId}/complete", controllers.ConsultationComplete(svcs.Consultations, logg))
			r.Post("/{consultationId}/cancel", controllers.ConsultationCancel(svcs.Consultations, logg))
		})

		r.Route("/support/tickets", func(r chi.Router) {
			r.Get("/", controllers.SupportTicketList(svcs.Support, logg))
			r.Get("/{ticketId}", controllers.SupportTicketDetail(svcs.Support, logg))
			r.With(idem).Post("/", controllers.SupportTicketCreate(svcs.Support, logg))
			r.Post("/{ticketId}/replies", controllers.SupportTicketReply(svcs.Support, logg))
			r.Post("/{ticketId}/close", controllers.SupportTicketClose(svcs.Support, logg))
		})

		r.Route("/delivery-issues", func(r chi.Router) {
			r.Get("/", controllers.DeliveryIssueList(svcs.Issues, logg))
			r.Get("/{issueId}", controllers.DeliveryIssueDetail(svcs.Issues, logg))
			r.With(idem).Post("/", controllers.DeliveryIssueReport(svcs.Issues, logg))
			r.With(issueResolvers).Put("/{issueId}/status", controllers.DeliveryIssueUpdateStatus(svcs.Issues, logg))
		})
	})

	return r
}
