package purchaseorder

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/procurement/internal/config"
	"github.com/Additional-Code/procurement/internal/dto"
	"github.com/Additional-Code/procurement/internal/entity"
	"github.com/Additional-Code/procurement/internal/presentation/http/response"
	"github.com/Additional-Code/procurement/internal/presentation/http/validator"
	service "github.com/Additional-Code/procurement/internal/service/purchaseorder"
	"github.com/Additional-Code/procurement/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/procurement/transport/http/purchaseorder")

// Handler exposes purchase order endpoints over HTTP.
type Handler struct {
	svc    *service.Service
	health dto.HealthResponse
}

// NewHandler constructs a purchase order Handler.
func NewHandler(svc *service.Service, cfg config.Config) *Handler {
	return &Handler{
		svc: svc,
		health: dto.HealthResponse{
			Status:  "UP",
			Service: cfg.Observability.ServiceName,
			Version: cfg.Observability.ServiceVersion,
		},
	}
}

// Register mounts the routes below the configured base path.
func Register(e *echo.Echo, cfg config.Config, h *Handler) {
	g := e.Group(cfg.HTTP.BasePath + "/purchase-orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/generate-order-number", h.generateOrderNumber)
	g.GET("/health", h.healthCheck)
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	po, err := bindPurchaseOrder(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.create")
	defer span.End()

	if err := h.svc.Create(ctx, po); err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.Int64("purchase_order.id", po.ID))

	return b.WithStatus(http.StatusCreated).
		WithMessage("Purchase order created successfully").
		WithData(dto.NewPurchaseOrderResponse(po)).
		Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	params := service.ListParams{
		Query:    c.QueryParam("q"),
		Status:   c.QueryParam("status"),
		Currency: c.QueryParam("currency"),
		From:     c.QueryParam("from"),
		To:       c.QueryParam("to"),
	}
	var err error
	if params.MinTotal, err = decimalParam(c, "minTotal"); err != nil {
		return b.WithError(err).Build()
	}
	if params.MaxTotal, err = decimalParam(c, "maxTotal"); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.list")
	defer span.End()

	items, err := h.svc.List(ctx, params)
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.Int("purchase_order.count", len(items)))

	b.WithMessage("Purchase orders retrieved successfully").
		WithData(dto.NewPurchaseOrderResponses(items)).
		WithCount(len(items))

	if q := strings.TrimSpace(params.Query); q != "" {
		b.WithAppliedFilter("q", q)
	}
	for _, key := range []string{"status", "currency", "from", "to"} {
		if v := strings.TrimSpace(c.QueryParam(key)); v != "" {
			b.WithAppliedFilter(key, v)
		}
	}
	if params.MinTotal != nil {
		b.WithAppliedFilter("minTotal", json.Number(params.MinTotal.String()))
	}
	if params.MaxTotal != nil {
		b.WithAppliedFilter("maxTotal", json.Number(params.MaxTotal.String()))
	}

	return b.Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := idParam(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.getByID", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	po, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMessage("Purchase order found successfully").
		WithData(dto.NewPurchaseOrderResponse(po)).
		Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := idParam(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	po, err := bindPurchaseOrder(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.update", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	updated, err := h.svc.Update(ctx, id, po)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMessage("Purchase order updated successfully").
		WithData(dto.NewPurchaseOrderResponse(updated)).
		Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := idParam(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.delete", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMessage("Purchase order deleted successfully").Build()
}

func (h *Handler) generateOrderNumber(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.generateOrderNumber")
	defer span.End()

	number, err := h.svc.GenerateOrderNumber(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMessage("Order number generated successfully").
		WithData(dto.OrderNumberResponse{OrderNumber: number}).
		Build()
}

func (h *Handler) healthCheck(c echo.Context) error {
	return response.New(c).
		WithMessage("Service is running").
		WithData(h.health).
		Build()
}

func bindPurchaseOrder(c echo.Context) (*entity.PurchaseOrder, error) {
	var req dto.PurchaseOrderRequest
	if err := c.Bind(&req); err != nil {
		return nil, errorbank.BadRequest("malformed request body", errorbank.WithCause(err))
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	po, err := req.ToEntity()
	if err != nil {
		return nil, errorbank.Validation(validator.InvalidPayloadMessage,
			errorbank.WithDetail("expectedDeliveryDate", "must be a date formatted as yyyy-MM-dd"))
	}
	return po, nil
}

func idParam(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorbank.TypeMismatch("invalid value for parameter: id",
			errorbank.WithDetail("id", "expected an integer"),
			errorbank.WithCause(err))
	}
	return id, nil
}

func decimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errorbank.TypeMismatch("invalid value for parameter: "+name,
			errorbank.WithDetail(name, "expected a decimal number"),
			errorbank.WithCause(err))
	}
	return &d, nil
}
