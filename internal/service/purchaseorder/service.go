package purchaseorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/procurement/internal/cache"
	"github.com/Additional-Code/procurement/internal/clock"
	"github.com/Additional-Code/procurement/internal/config"
	"github.com/Additional-Code/procurement/internal/entity"
	"github.com/Additional-Code/procurement/internal/messaging"
	"github.com/Additional-Code/procurement/internal/observability"
	repo "github.com/Additional-Code/procurement/internal/repository/purchaseorder"
	"github.com/Additional-Code/procurement/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/procurement/service/purchaseorder")

// Service encapsulates business logic around purchase orders.
type Service struct {
	store       repo.Store
	cache       cache.Store
	cacheTTL    time.Duration
	clock       clock.Clock
	logger      *zap.Logger
	publisher   messaging.Client
	messaging   messagingConfig
	metrics     *observability.PurchaseOrderMetrics
	maxAttempts int
}

type messagingConfig struct {
	enabled bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     repo.Store
	Cache     cache.Store
	Clock     clock.Clock
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
	Metrics   *observability.PurchaseOrderMetrics
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := p.Clock
	if c == nil {
		c = clock.NewSystem()
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics, _ = observability.NewPurchaseOrderMetrics(nil)
	}
	attempts := p.Config.OrderNumber.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Service{
		store:     p.Store,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		clock:     c,
		logger:    logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
		},
		metrics:     metrics,
		maxAttempts: attempts,
	}
}

// ListParams carries the raw search criteria accepted by List.
// Status, Currency, From and To are parsed and validated by List.
type ListParams struct {
	Query    string
	Status   string
	Currency string
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal
	From     string
	To       string
}

// Filter validates the params and converts them to a repository filter.
func (p ListParams) Filter() (repo.Filter, error) {
	status, err := ParseStatus(p.Status)
	if err != nil {
		return repo.Filter{}, err
	}
	currency, err := ParseCurrency(p.Currency)
	if err != nil {
		return repo.Filter{}, err
	}
	if err := ValidateAmountRange(p.MinTotal, p.MaxTotal); err != nil {
		return repo.Filter{}, err
	}
	from, err := ParseDateTime(p.From, "from")
	if err != nil {
		return repo.Filter{}, err
	}
	to, err := ParseDateTime(p.To, "to")
	if err != nil {
		return repo.Filter{}, err
	}
	if err := ValidateDateRange(from, to); err != nil {
		return repo.Filter{}, err
	}
	return repo.Filter{
		Query:    strings.TrimSpace(p.Query),
		Status:   status,
		Currency: currency,
		MinTotal: p.MinTotal,
		MaxTotal: p.MaxTotal,
		From:     from,
		To:       to,
	}, nil
}

// List returns every purchase order matching all supplied criteria, or every
// purchase order when none are supplied.
func (s *Service) List(ctx context.Context, params ListParams) ([]entity.PurchaseOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "PurchaseOrderService.List")
	defer span.End()

	filter, err := params.Filter()
	if err != nil {
		return nil, err
	}

	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.internal(span, "failed to list purchase orders", err)
	}
	s.metrics.Listed(ctx, len(items), !filter.Empty())
	return items, nil
}

// Get retrieves a purchase order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "PurchaseOrderService.Get", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	var cached entity.PurchaseOrder
	if err := cache.GetJSON(ctx, s.cache, CacheKey(id), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("purchase order cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	po, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}
	s.storeInCache(ctx, po)
	return po, nil
}

// Create validates and persists a new purchase order. A blank order number is
// replaced by a generated one and a blank status defaults to DRAFT.
func (s *Service) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	if po == nil {
		return errorbank.BadRequest("purchase order payload is required")
	}
	ctx, span := serviceTracer.Start(ctx, "PurchaseOrderService.Create")
	defer span.End()

	if err := ValidatePurchaseOrder(po, clock.Today(s.clock)); err != nil {
		return err
	}

	po.ID = 0
	po.SupplierName = strings.TrimSpace(po.SupplierName)
	po.OrderNumber = strings.TrimSpace(po.OrderNumber)
	if po.Status == "" {
		po.Status = entity.StatusDraft
	}
	po.CreatedAt = s.clock.Now().Truncate(time.Microsecond)

	generated := po.OrderNumber == ""
	if !generated {
		if err := s.ensureNumberAvailable(ctx, span, po.OrderNumber); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		if generated {
			number, err := s.GenerateOrderNumber(ctx)
			if err != nil {
				return err
			}
			po.OrderNumber = number
		}

		err := s.store.Create(ctx, po)
		if err == nil {
			break
		}
		if !errors.Is(err, repo.ErrDuplicateOrderNumber) {
			return s.internal(span, "failed to create purchase order", err)
		}
		if !generated || attempt >= s.maxAttempts {
			return duplicateNumber(po.OrderNumber)
		}
		s.metrics.NumberCollision(ctx)
		s.logger.Info("generated order number taken, retrying",
			zap.String("order_number", po.OrderNumber),
			zap.Int("attempt", attempt),
		)
	}

	span.SetAttributes(attribute.Int64("purchase_order.id", po.ID), attribute.String("purchase_order.number", po.OrderNumber))
	s.storeInCache(ctx, po)
	s.metrics.Created(ctx, string(po.Status), string(po.Currency))
	s.publish(ctx, EventCreated, po)
	return nil
}

// Update replaces every mutable field of the order identified by id.
// The id and creation timestamp are preserved; a blank order number or
// status keeps the stored value.
func (s *Service) Update(ctx context.Context, id int64, po *entity.PurchaseOrder) (*entity.PurchaseOrder, error) {
	if po == nil {
		return nil, errorbank.BadRequest("purchase order payload is required")
	}
	ctx, span := serviceTracer.Start(ctx, "PurchaseOrderService.Update", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	existing, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(po.OrderNumber)
	if number == "" {
		number = existing.OrderNumber
	}
	if number != existing.OrderNumber {
		if err := s.ensureNumberAvailable(ctx, span, number); err != nil {
			return nil, err
		}
	}

	if err := ValidatePurchaseOrder(po, clock.Today(s.clock)); err != nil {
		return nil, err
	}

	updated := &entity.PurchaseOrder{
		ID:                   existing.ID,
		OrderNumber:          number,
		SupplierName:         strings.TrimSpace(po.SupplierName),
		Status:               po.Status,
		TotalAmount:          po.TotalAmount,
		Currency:             po.Currency,
		CreatedAt:            existing.CreatedAt,
		ExpectedDeliveryDate: po.ExpectedDeliveryDate,
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}

	if err := s.store.Update(ctx, updated); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, notFound(id)
		case errors.Is(err, repo.ErrDuplicateOrderNumber):
			return nil, duplicateNumber(number)
		default:
			return nil, s.internal(span, "failed to update purchase order", err)
		}
	}

	s.evict(ctx, id)
	s.metrics.Updated(ctx, string(updated.Status))
	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

// Delete removes the order identified by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "PurchaseOrderService.Delete", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	existing, err := s.load(ctx, span, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(id)
		}
		return s.internal(span, "failed to delete purchase order", err)
	}

	s.evict(ctx, id)
	s.metrics.Deleted(ctx)
	s.publish(ctx, EventDeleted, existing)
	return nil
}

// GenerateOrderNumber proposes PO-<year>-<count+1>, probing forward past
// numbers that are already taken.
func (s *Service) GenerateOrderNumber(ctx context.Context) (string, error) {
	ctx, span := serviceTracer.Start(ctx, "PurchaseOrderService.GenerateOrderNumber")
	defer span.End()

	count, err := s.store.Count(ctx)
	if err != nil {
		return "", s.internal(span, "failed to count purchase orders", err)
	}
	year := s.clock.Now().Year()
	for i := 0; i < s.maxAttempts; i++ {
		number := FormatOrderNumber(year, count+1+i)
		exists, err := s.store.ExistsByOrderNumber(ctx, number)
		if err != nil {
			return "", s.internal(span, "failed to check order number", err)
		}
		if !exists {
			return number, nil
		}
		s.metrics.NumberCollision(ctx)
	}
	return "", s.internal(span, "failed to generate order number",
		fmt.Errorf("no free order number after %d attempts", s.maxAttempts))
}

func (s *Service) load(ctx context.Context, span trace.Span, id int64) (*entity.PurchaseOrder, error) {
	po, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, s.internal(span, "failed to load purchase order", err)
	}
	return po, nil
}

func (s *Service) ensureNumberAvailable(ctx context.Context, span trace.Span, number string) error {
	exists, err := s.store.ExistsByOrderNumber(ctx, number)
	if err != nil {
		return s.internal(span, "failed to check order number", err)
	}
	if exists {
		return duplicateNumber(number)
	}
	return nil
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return errorbank.Internal(msg, errorbank.WithCause(err))
}

// CacheKey is the cache entry holding the purchase order with the given id.
func CacheKey(id int64) string {
	return fmt.Sprintf("purchase_orders:%d", id)
}

func (s *Service) storeInCache(ctx context.Context, po *entity.PurchaseOrder) {
	if err := cache.SetJSON(ctx, s.cache, CacheKey(po.ID), po, s.cacheTTL); err != nil {
		s.logger.Warn("purchase order cache write failed", zap.Int64("id", po.ID), zap.Error(err))
	}
}

func (s *Service) evict(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKey(id)); err != nil {
		s.logger.Warn("purchase order cache evict failed", zap.Int64("id", id), zap.Error(err))
	}
}

func notFound(id int64) error {
	return errorbank.NotFound(fmt.Sprintf("Purchase order not found with id: %d", id))
}

func duplicateNumber(number string) error {
	return errorbank.Validation(
		fmt.Sprintf("Purchase order with number %s already exists", number),
		errorbank.WithDetail("orderNumber", "already exists"),
	)
}
