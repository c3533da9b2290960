package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docrepo/docs"
	"docrepo/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// gatherer backs /metrics; health gates /health.
func RegisterRoutes(app *fiber.App, docSvc service.DocumentService, gatherer prometheus.Gatherer, health ...Pinger) {
	app.Get("/health", HealthCheck(health...))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Post("/documents", CreateDocument(docSvc))
	app.Get("/documents", ListDocuments(docSvc))
	// registered before /documents/:id so "search" is never parsed as an id
	app.Get("/documents/search", SearchDocuments(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Get("/documents/:id/metadata", GetDocumentMetadata(docSvc))
	app.Get("/documents/:id/history", DocumentHistory(docSvc))
	app.Put("/documents/:id", UpdateDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
}

// RegisterSwagger serves the API docs under /swagger. SwaggerInfo is read by every
// docs request, so it is filled in here once, before the app starts serving.
func RegisterSwagger(app *fiber.App, host string) {
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = []string{"http", "https"}
	app.Get("/swagger/*", swagger.HandlerDefault)
}
