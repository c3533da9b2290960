package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/model"
	"docrepo/internal/service"
)

// documentListResponse wraps list and search results.
type documentListResponse struct {
	Items []model.DocumentMetadata `json:"data"`
	Total int                      `json:"total"`
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// serviceError renders a service failure.
func serviceError(c *fiber.Ctx, err error) error {
	return writeError(c, classify(err))
}

// CreateDocument stores a new document from a JSON body.
//
// @Summary  Create a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    body body service.CreateDocumentRequest true "document"
// @Success  201 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /documents [post]
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.CreateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, errBadRequest)
		}
		doc, err := docSvc.Create(c.UserContext(), req)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns metadata of every document.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Success  200 {object} documentListResponse
// @Failure  500 {object} errorPayload
// @Router   /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := docSvc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(documentListResponse{Items: items, Total: len(items)})
	}
}

// SearchDocuments matches the query against ids, titles and content.
//
// @Summary  Search documents
// @Tags     documents
// @Produce  json
// @Param    query query string true "id or case-insensitive text"
// @Success  200 {object} documentListResponse
// @Failure  400 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /documents/search [get]
func SearchDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := docSvc.Search(c.UserContext(), c.Query("query"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(documentListResponse{Items: items, Total: len(items)})
	}
}

// GetDocument returns a document with its content.
//
// @Summary  Get a document
// @Tags     documents
// @Produce  json
// @Param    id path int true "document id"
// @Success  200 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, errInvalidID)
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocumentMetadata returns a document without its content.
//
// @Summary  Get document metadata
// @Tags     documents
// @Produce  json
// @Param    id path int true "document id"
// @Success  200 {object} model.DocumentMetadata
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /documents/{id}/metadata [get]
func GetDocumentMetadata(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, errInvalidID)
		}
		meta, err := docSvc.GetMetadata(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(meta)
	}
}

// UpdateDocument applies a partial update; omitted fields keep their values.
//
// @Summary  Update a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id   path int                 true "document id"
// @Param    body body model.DocumentUpdate true "fields to change"
// @Success  200 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /documents/{id} [put]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, errInvalidID)
		}
		var upd model.DocumentUpdate
		if err := c.BodyParser(&upd); err != nil {
			return writeError(c, errBadRequest)
		}
		doc, err := docSvc.Update(c.UserContext(), id, upd)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document.
//
// @Summary  Delete a document
// @Tags     documents
// @Param    id path int true "document id"
// @Success  204
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, errInvalidID)
		}
		deleted, err := docSvc.Delete(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		if !deleted {
			return writeError(c, errNoDocument)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentHistory returns the change journal of a document, newest first.
//
// @Summary  Document history
// @Tags     documents
// @Produce  json
// @Param    id     path  int true  "document id"
// @Param    limit  query int false "page size" default(10)
// @Param    offset query int false "page offset" default(0)
// @Success  200 {object} service.HistoryResult
// @Failure  400 {object} errorPayload
// @Router   /documents/{id}/history [get]
func DocumentHistory(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, errInvalidID)
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, errInvalidLimit)
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, errInvalidOffset)
		}
		res, err := docSvc.History(c.UserContext(), id, limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}
