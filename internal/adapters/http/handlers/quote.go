package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tourwise/quoting-service/internal/adapters/http/dto"
	"github.com/tourwise/quoting-service/internal/app"
	"github.com/tourwise/quoting-service/internal/domain"
	"github.com/tourwise/quoting-service/internal/ports"
)

// QuoteHandler handles the quote aggregate endpoints: header CRUD, day and
// expense mutations, and explicit pricing recalculation.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// CreateQuote handles POST /api/v1/quotes
//
// @Summary Create a manual quote
// @Description Creates a quote header, optionally prefilled with one empty day per trip date
// @Tags quotes
// @Accept json
// @Produce json
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	quote, err := h.service.CreateQuote(c.Request.Context(), toCreateInput(&req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToQuoteResponse(quote))
}

// ListQuotes handles GET /api/v1/quotes
//
// @Summary List quotes
// @Description Returns a page of quotes ordered by creation time
// @Tags quotes
// @Produce json
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size (1-100, default 20)"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	offset, err := offsetFromCursor(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid pagination cursor",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	limit := req.GetLimit()

	// Fetch one extra row to detect whether another page exists.
	quotes, _, err := h.service.ListQuotes(c.Request.Context(), ports.QuoteListOptions{
		Offset: offset,
		Limit:  limit + 1,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	items := make([]*dto.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, dto.ToQuoteResponse(q))
	}

	next := offset + limit
	resp := dto.NewPaginatedResponse(items, limit, func(last *dto.QuoteResponse) *dto.CursorData {
		return dto.NewCursor("offset", strconv.Itoa(next), last.ID)
	})

	c.JSON(http.StatusOK, resp)
}

// offsetFromCursor translates an opaque listing cursor back to an offset.
// An absent cursor means the first page.
func offsetFromCursor(req *dto.PaginationRequest) (int, error) {
	cursor, err := req.DecodeCursor()
	if err != nil {
		if err == dto.ErrNoCursor {
			return 0, nil
		}

		return 0, err
	}

	offset, err := strconv.Atoi(cursor.Value)
	if err != nil || offset < 0 {
		return 0, dto.ErrInvalidCursor
	}

	return offset, nil
}

// GetQuote handles GET /api/v1/quotes/:id
//
// @Summary Get a quote
// @Description Returns the full aggregate: header, days, expenses and the cached pricing table
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// UpdateQuote handles PATCH /api/v1/quotes/:id
//
// @Summary Update quote header fields
// @Description Merges the supplied fields and marks the pricing table stale
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [patch]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	var req dto.UpdateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	quote, err := h.service.UpdateQuote(c.Request.Context(), id, toUpdateInput(&req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// DeleteQuote handles DELETE /api/v1/quotes/:id
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	if err := h.service.DeleteQuote(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddDay handles POST /api/v1/quotes/:id/days
func (h *QuoteHandler) AddDay(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	var req dto.AddDayRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	day, err := h.service.AddDay(c.Request.Context(), id, req.Date.Time)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        day.ID.String(),
		"dayNumber": day.DayNumber,
		"date":      dto.NewDate(day.Date),
	})
}

// RemoveDay handles DELETE /api/v1/quotes/:id/days/:dayId
//
// Removing a day cascades to its expenses and renumbers the remaining days,
// so the updated aggregate is returned rather than a bare 204.
func (h *QuoteHandler) RemoveDay(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	dayID, ok := uuidParam(c, "dayId", "day")
	if !ok {
		return
	}

	quote, err := h.service.RemoveDay(c.Request.Context(), id, dayID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// AddExpense handles POST /api/v1/quotes/:id/days/:dayId/expenses
func (h *QuoteHandler) AddExpense(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	dayID, ok := uuidParam(c, "dayId", "day")
	if !ok {
		return
	}

	var req dto.AddExpenseRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	quote, expense, err := h.service.AddExpense(c.Request.Context(), id, dayID, app.AddExpenseInput{
		Category:    domain.ExpenseCategory(req.Category),
		Location:    req.Location,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense, quote.TransportPricingMode))
}

// UpdateExpense handles PATCH /api/v1/quotes/:id/expenses/:expenseId
func (h *QuoteHandler) UpdateExpense(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	expenseID, ok := uuidParam(c, "expenseId", "expense")
	if !ok {
		return
	}

	var req dto.UpdateExpenseRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	update := domain.ExpenseUpdate{
		Location:    req.Location,
		Description: req.Description,
		Price:       req.Price,
	}
	if req.Category != nil {
		category := domain.ExpenseCategory(*req.Category)
		update.Category = &category
	}

	quote, expense, err := h.service.UpdateExpense(c.Request.Context(), id, expenseID, update)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense, quote.TransportPricingMode))
}

// RemoveExpense handles DELETE /api/v1/quotes/:id/expenses/:expenseId
func (h *QuoteHandler) RemoveExpense(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	expenseID, ok := uuidParam(c, "expenseId", "expense")
	if !ok {
		return
	}

	if err := h.service.RemoveExpense(c.Request.Context(), id, expenseID); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RecalculatePricing handles POST /api/v1/quotes/:id/pricing/recalculate
//
// @Summary Recalculate the pricing table
// @Description Regenerates the per-bracket pricing table from current days and expenses and clears the stale flag
// @Tags pricing
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.PricingTableResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/pricing/recalculate [post]
func (h *QuoteHandler) RecalculatePricing(c *gin.Context) {
	id, ok := uuidParam(c, "id", "quote")
	if !ok {
		return
	}

	table, err := h.service.RecalculatePricing(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPricingTableResponse(table))
}

// RecalculateStalePricing handles POST /api/v1/admin/pricing/recalculate-stale
func (h *QuoteHandler) RecalculateStalePricing(c *gin.Context) {
	result, err := h.service.RecalculateStalePricing(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// uuidParam parses a UUID path parameter, responding with a 400 when it is
// missing or malformed.
func uuidParam(c *gin.Context, name, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid "+entity+" ID",
		).WithTraceID(dto.GetTraceID(c)))

		return uuid.Nil, false
	}

	return id, true
}

func toCreateInput(req *dto.CreateQuoteRequest) app.CreateQuoteInput {
	input := app.CreateQuoteInput{
		QuoteName:            req.QuoteName,
		Category:             domain.QuoteCategory(req.Category),
		SeasonName:           req.SeasonName,
		StartDate:            req.StartDate.Time,
		EndDate:              req.EndDate.Time,
		TourType:             domain.TourType(req.TourType),
		Pax:                  req.Pax,
		Markup:               req.Markup,
		Tax:                  req.Tax,
		TransportPricingMode: domain.TransportPricingMode(req.TransportPricingMode),
		GenerateDays:         req.GenerateDays,
	}

	if req.ValidFrom != nil {
		from := req.ValidFrom.Time
		input.ValidFrom = &from
	}

	if req.ValidTo != nil {
		to := req.ValidTo.Time
		input.ValidTo = &to
	}

	return input
}

func toUpdateInput(req *dto.UpdateQuoteRequest) app.UpdateQuoteInput {
	input := app.UpdateQuoteInput{
		QuoteName:  req.QuoteName,
		SeasonName: req.SeasonName,
		Pax:        req.Pax,
		Markup:     req.Markup,
		Tax:        req.Tax,
		Version:    req.Version,
	}

	if req.Category != nil {
		category := domain.QuoteCategory(*req.Category)
		input.Category = &category
	}

	if req.TourType != nil {
		tourType := domain.TourType(*req.TourType)
		input.TourType = &tourType
	}

	if req.TransportPricingMode != nil {
		mode := domain.TransportPricingMode(*req.TransportPricingMode)
		input.TransportPricingMode = &mode
	}

	if req.ValidFrom != nil {
		from := req.ValidFrom.Time
		input.ValidFrom = &from
	}

	if req.ValidTo != nil {
		to := req.ValidTo.Time
		input.ValidTo = &to
	}

	if req.StartDate != nil {
		start := req.StartDate.Time
		input.StartDate = &start
	}

	if req.EndDate != nil {
		end := req.EndDate.Time
		input.EndDate = &end
	}

	return input
}

// RegisterQuoteRoutes registers the quote aggregate routes on the given
// router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.POST("", h.CreateQuote)
	quotes.GET("", h.ListQuotes)
	quotes.GET("/:id", h.GetQuote)
	quotes.PATCH("/:id", h.UpdateQuote)
	quotes.DELETE("/:id", h.DeleteQuote)
	quotes.POST("/:id/days", h.AddDay)
	quotes.DELETE("/:id/days/:dayId", h.RemoveDay)
	quotes.POST("/:id/days/:dayId/expenses", h.AddExpense)
	quotes.PATCH("/:id/expenses/:expenseId", h.UpdateExpense)
	quotes.DELETE("/:id/expenses/:expenseId", h.RemoveExpense)
	quotes.POST("/:id/pricing/recalculate", h.RecalculatePricing)
}

// RegisterAdminRoutes registers batch operations intended for operators.
func (h *QuoteHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/pricing/recalculate-stale", h.RecalculateStalePricing)
}
