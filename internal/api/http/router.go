package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/twin-workflow-service/internal/api/http/handlers"
	"github.com/spec-kit/twin-workflow-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Statistics     *handlers.StatisticsHandler
	Statuses       *handlers.StatusesHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	api.Get("/tickets/by-number/:sequenceNumber", cfg.Tickets.GetTicketBySequenceNumber)

	sites := api.Group("/sites/:siteId")

	tickets := sites.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Post("/batch", cfg.Tickets.CreateTickets)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/count", cfg.Tickets.CountTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/audit-trail", cfg.Tickets.GetAuditTrail)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id/comments/:commentId", cfg.Tickets.DeleteComment)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachment)
	tickets.Delete("/:id/attachments/:attachmentId", cfg.Tickets.DeleteAttachment)
	tickets.Patch("/:id/tasks/:taskId", cfg.Tickets.CompleteTask)

	sites.Get("/categories", cfg.Catalog.ListCategories)
	sites.Post("/categories", cfg.Catalog.CreateCategory)
	sites.Patch("/categories/:id", cfg.Catalog.RenameCategory)
	sites.Delete("/categories/:id", cfg.Catalog.DeleteCategory)

	sites.Get("/reporters", cfg.Catalog.ListReporters)
	sites.Post("/reporters", cfg.Catalog.CreateReporter)
	sites.Get("/reporters/:id", cfg.Catalog.GetReporter)

	statistics := api.Group("/statistics")
	statistics.Get("/sites", cfg.Statistics.GetSiteStatistics)
	statistics.Get("/sites/status", cfg.Statistics.GetSiteStatisticsByStatus)
	statistics.Get("/insights", cfg.Statistics.GetInsightStatistics)
	statistics.Get("/twins", cfg.Statistics.GetTwinStatistics)
	statistics.Get("/twins/status", cfg.Statistics.GetTwinStatusStatistics)
	statistics.Get("/twins/:spaceTwinId/categories", cfg.Statistics.GetCategoryCounts)
	statistics.Get("/twins/:spaceTwinId/dates", cfg.Statistics.GetDateCounts)

	customers := api.Group("/customers/:customerId")
	customers.Get("/statuses", cfg.Statuses.ListStatuses)
	customers.Put("/statuses", cfg.Statuses.UpsertStatuses)
}
