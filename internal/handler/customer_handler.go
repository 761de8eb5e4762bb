package handler

import (
	"net/http"

	"posledger/internal/service"
	"posledger/pkg/pagination"
	"posledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService service.CustomerService
	ledgerService   service.LedgerService
}

func NewCustomerHandler(customerService service.CustomerService, ledgerService service.LedgerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, ledgerService: ledgerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.POST("", h.CreateCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
		customers.GET("/:id/balance", h.GetBalance)
		customers.GET("/:id/statement", h.GetStatement)
		customers.POST("/:id/debts", h.AddDebt)
		customers.POST("/:id/payments", h.AddPayment)
		customers.POST("/:id/settle", h.SettleBalance)
	}
}

// ListCustomers handles retrieving paginated customers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Substring of name, phone or location"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)
	customers := h.customerService.ListCustomers(c.Request.Context(), c.Query("search"))
	page, total := pagination.Slice(customers, p)
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, page, p.Page, p.Limit, total))
}

// GetCustomer returns a customer with the derived balance
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.CustomerView}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// CreateCustomer adds a customer
// @Summary      Create customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerRequest  true  "Create Customer Payload"
// @Success      201      {object}  response.Response{data=service.CustomerView}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, view))
}

// UpdateCustomer merges profile fields; ledger totals cannot be edited here
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path      int                            true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerRequest  true  "Update Customer Payload"
// @Success      200      {object}  response.Response{data=service.CustomerView}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.customerService.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// DeleteCustomer removes a customer that owes nothing
// @Summary      Delete customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Customer deleted successfully"}))
}

// GetBalance returns the ledger balance of a customer
// @Summary      Get customer balance
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.BalanceInfo}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id}/balance [get]
func (h *CustomerHandler) GetBalance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balance))
}

// GetStatement lists the ledger postings of a customer
// @Summary      Get customer statement
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response{data=[]model.LedgerTransaction}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id}/statement [get]
func (h *CustomerHandler) GetStatement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	txns, err := h.ledgerService.Statement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, txns))
}

// AddDebt charges an amount to a customer
// @Summary      Add debt
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Customer ID"
// @Param        payload  body      service.PostAmountRequest  true  "Amount"
// @Success      200      {object}  response.Response{data=service.BalanceInfo}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id}/debts [post]
func (h *CustomerHandler) AddDebt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.PostAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	balance, err := h.ledgerService.AddDebt(c.Request.Context(), id, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balance))
}

// AddPayment records a payment; overpayment becomes credit
// @Summary      Add payment
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Customer ID"
// @Param        payload  body      service.PostAmountRequest  true  "Amount"
// @Success      200      {object}  response.Response{data=service.PaymentResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id}/payments [post]
func (h *CustomerHandler) AddPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.PostAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.ledgerService.AddPayment(c.Request.Context(), id, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// SettleBalance records a payment that may not exceed the current balance
// @Summary      Settle balance
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Customer ID"
// @Param        payload  body      service.PostAmountRequest  true  "Amount"
// @Success      200      {object}  response.Response{data=service.PaymentResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id}/settle [post]
func (h *CustomerHandler) SettleBalance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.PostAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.ledgerService.SettleBalance(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
