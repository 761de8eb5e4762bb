package handler

import (
	"net/http"

	"posledger/internal/model"
	"posledger/internal/service"
	"posledger/pkg/pagination"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type resolveRowRequest struct {
	Query string `json:"query" binding:"required"`
}

type switchCurrencyRequest struct {
	Currency string `json:"currency" binding:"required,oneof=USD IQD"`
}

// draftResponse carries the draft together with the cursor so clients can
// tell a saved document from a new one.
type draftResponse struct {
	Index    int            `json:"index"`
	Document model.Document `json:"document"`
}

// DocumentHandler exposes one document kind: the saved list plus the shared
// editor session for that kind.
type DocumentHandler struct {
	documentService service.DocumentService
	editor          *service.Editor
}

func NewDocumentHandler(documentService service.DocumentService, editor *service.Editor) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, editor: editor}
}

func basePath(kind model.DocumentKind) string {
	return "/api/" + string(kind) + "s"
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group(basePath(h.editor.Kind()))
	{
		docs.GET("", h.ListDocuments)
		docs.GET("/by-number/:number", h.GetByNumber)

		docs.GET("/draft", h.GetDraft)
		docs.POST("/draft", h.NewDraft)
		docs.PUT("/draft", h.SetHeader)
		docs.POST("/draft/rows", h.AddRow)
		docs.PUT("/draft/rows/:index", h.UpdateRow)
		docs.DELETE("/draft/rows/:index", h.RemoveRow)
		docs.POST("/draft/rows/:index/resolve", h.ResolveRow)
		docs.POST("/draft/currency", h.SwitchCurrency)
		docs.POST("/draft/save", h.Save)

		docs.POST("/navigate/next", h.Next)
		docs.POST("/navigate/previous", h.Previous)
		docs.POST("/open/:index", h.Open)
	}
}

func (h *DocumentHandler) respondDraft(c *gin.Context, doc model.Document, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, draftResponse{Index: h.editor.CurrentIndex(), Document: doc}))
}

// ListDocuments handles retrieving saved documents in save order
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Router       /api/invoices [get]
// @Router       /api/returns [get]
// @Router       /api/transfers [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context(), h.editor.Kind())
	if err != nil {
		respondError(c, err)
		return
	}
	p := pagination.Parse(c)
	page, total := pagination.Slice(docs, p)
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, page, p.Page, p.Limit, total))
}

// GetByNumber returns a saved document by its number
// @Summary      Get document by number
// @Tags         documents
// @Produce      json
// @Param        number  path      string  true  "Document number, e.g. INV-001"
// @Success      200     {object}  response.Response{data=model.Document}
// @Failure      404     {object}  response.Response
// @Router       /api/invoices/by-number/{number} [get]
func (h *DocumentHandler) GetByNumber(c *gin.Context) {
	doc, err := h.documentService.Get(c.Request.Context(), h.editor.Kind(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// GetDraft returns the document under the cursor
// @Summary      Current draft
// @Tags         documents
// @Produce      json
// @Success      200  {object}  response.Response{data=draftResponse}
// @Router       /api/invoices/draft [get]
func (h *DocumentHandler) GetDraft(c *gin.Context) {
	doc, err := h.editor.Draft(c.Request.Context())
	h.respondDraft(c, doc, err)
}

// NewDraft starts a new document with the next free number
// @Summary      New draft
// @Tags         documents
// @Produce      json
// @Success      200  {object}  response.Response{data=draftResponse}
// @Router       /api/invoices/draft [post]
func (h *DocumentHandler) NewDraft(c *gin.Context) {
	doc, err := h.editor.NewDraft(c.Request.Context())
	h.respondDraft(c, doc, err)
}

// SetHeader edits header fields of the draft
// @Summary      Edit draft header
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        payload  body      service.HeaderPatch  true  "Header fields"
// @Success      200      {object}  response.Response{data=draftResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/draft [put]
func (h *DocumentHandler) SetHeader(c *gin.Context) {
	var patch service.HeaderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := h.editor.SetHeader(c.Request.Context(), patch)
	h.respondDraft(c, doc, err)
}

// AddRow appends a line item
// @Summary      Add row
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RowInput  true  "Row"
// @Success      200      {object}  response.Response{data=draftResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/draft/rows [post]
func (h *DocumentHandler) AddRow(c *gin.Context) {
	var row service.RowInput
	if err := c.ShouldBindJSON(&row); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := h.editor.AddRow(c.Request.Context(), row)
	h.respondDraft(c, doc, err)
}

// UpdateRow edits a line item
// @Summary      Update row
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        index    path      int               true  "Row index"
// @Param        payload  body      service.RowPatch  true  "Row fields"
// @Success      200      {object}  response.Response{data=draftResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/draft/rows/{index} [put]
func (h *DocumentHandler) UpdateRow(c *gin.Context) {
	i, ok := parseIndex(c, "index")
	if !ok {
		return
	}
	var patch service.RowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := h.editor.UpdateRow(c.Request.Context(), i, patch)
	h.respondDraft(c, doc, err)
}

// RemoveRow deletes a line item
// @Summary      Remove row
// @Tags         documents
// @Produce      json
// @Param        index  path      int  true  "Row index"
// @Success      200    {object}  response.Response{data=draftResponse}
// @Failure      400    {object}  response.Response
// @Router       /api/invoices/draft/rows/{index} [delete]
func (h *DocumentHandler) RemoveRow(c *gin.Context) {
	i, ok := parseIndex(c, "index")
	if !ok {
		return
	}
	doc, err := h.editor.RemoveRow(c.Request.Context(), i)
	h.respondDraft(c, doc, err)
}

// ResolveRow fills a row from the catalog by barcode or name
// @Summary      Resolve row
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        index    path      int                true  "Row index"
// @Param        payload  body      resolveRowRequest  true  "Barcode or name"
// @Success      200      {object}  response.Response{data=draftResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/draft/rows/{index}/resolve [post]
func (h *DocumentHandler) ResolveRow(c *gin.Context) {
	i, ok := parseIndex(c, "index")
	if !ok {
		return
	}
	var req resolveRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := h.editor.ResolveRow(c.Request.Context(), i, req.Query)
	h.respondDraft(c, doc, err)
}

// SwitchCurrency converts every price of the draft to another currency
// @Summary      Switch currency
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        payload  body      switchCurrencyRequest  true  "Target currency"
// @Success      200      {object}  response.Response{data=draftResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/draft/currency [post]
func (h *DocumentHandler) SwitchCurrency(c *gin.Context) {
	var req switchCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := h.editor.SwitchCurrency(c.Request.Context(), req.Currency)
	h.respondDraft(c, doc, err)
}

// Save persists the draft and applies its stock and ledger effects
// @Summary      Save draft
// @Tags         documents
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SaveResult}
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/draft/save [post]
func (h *DocumentHandler) Save(c *gin.Context) {
	res, err := h.editor.Save(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Next moves the cursor forward
// @Summary      Next document
// @Tags         documents
// @Produce      json
// @Success      200  {object}  response.Response{data=draftResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/navigate/next [post]
func (h *DocumentHandler) Next(c *gin.Context) {
	doc, err := h.editor.Next(c.Request.Context())
	h.respondDraft(c, doc, err)
}

// Previous moves the cursor backward
// @Summary      Previous document
// @Tags         documents
// @Produce      json
// @Success      200  {object}  response.Response{data=draftResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/navigate/previous [post]
func (h *DocumentHandler) Previous(c *gin.Context) {
	doc, err := h.editor.Previous(c.Request.Context())
	h.respondDraft(c, doc, err)
}

// Open jumps to a saved document, or to the new draft with -1
// @Summary      Open document
// @Tags         documents
// @Produce      json
// @Param        index  path      int  true  "Saved index or -1"
// @Success      200    {object}  response.Response{data=draftResponse}
// @Failure      404    {object}  response.Response
// @Router       /api/invoices/open/{index} [post]
func (h *DocumentHandler) Open(c *gin.Context) {
	i, ok := parseIndex(c, "index")
	if !ok {
		return
	}
	doc, err := h.editor.Open(c.Request.Context(), i)
	h.respondDraft(c, doc, err)
}
