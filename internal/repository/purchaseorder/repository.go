package purchaseorder

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/procurement/internal/database"
	"github.com/Additional-Code/procurement/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/procurement/repository/purchaseorder")

var (
	// ErrNotFound is returned when a purchase order is missing.
	ErrNotFound = errors.New("purchase order not found")
	// ErrDuplicateOrderNumber is returned when the unique order number index rejects a write.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)

// Store is the persistence gateway used by the purchase order service.
type Store interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, po *entity.PurchaseOrder) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) ([]entity.PurchaseOrder, error)
	Count(ctx context.Context) (int, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
}

// Repository encapsulates read/write access for purchase orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

var _ Store = (*Repository)(nil)

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new purchase order; the store assigns its id.
func (r *Repository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	if po == nil {
		return errors.New("nil purchase order")
	}
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.Create", trace.WithAttributes(attribute.String("purchase_order.number", po.OrderNumber)))
	defer span.End()

	if _, err := r.writer.NewInsert().Model(po).Exec(ctx); err != nil {
		return spanError(span, "insert failed", translate(err))
	}
	return nil
}

// GetByID fetches a purchase order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.GetByID", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	po := new(entity.PurchaseOrder)
	err := r.reader.NewSelect().Model(po).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, spanError(span, "select failed", err)
	}
	return po, nil
}

// Update overwrites the mutable columns of an existing purchase order.
// id and created_at are never written.
func (r *Repository) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	if po == nil {
		return errors.New("nil purchase order")
	}
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.Update", trace.WithAttributes(attribute.Int64("purchase_order.id", po.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model(po).
		Column("order_number", "supplier_name", "status", "total_amount", "currency", "expected_delivery_date").
		WherePK().
		Exec(ctx)
	if err != nil {
		return spanError(span, "update failed", translate(err))
	}
	return nil
}

// Delete removes a purchase order by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.Delete", trace.WithAttributes(attribute.Int64("purchase_order.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.PurchaseOrder)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return spanError(span, "delete failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return spanError(span, "rows affected", err)
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// List returns every purchase order matching filter, oldest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.List", trace.WithAttributes(attribute.Bool("filter.empty", filter.Empty())))
	defer span.End()

	orders := make([]entity.PurchaseOrder, 0)
	q := r.reader.NewSelect().Model(&orders)

	if filter.Query != "" {
		pattern := containsPattern(filter.Query)
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("LOWER(order_number) LIKE ? ESCAPE '"+likeEscape+"'", pattern).
				WhereOr("LOWER(supplier_name) LIKE ? ESCAPE '"+likeEscape+"'", pattern)
		})
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Currency != "" {
		q = q.Where("currency = ?", filter.Currency)
	}
	if filter.MinTotal != nil {
		q = q.Where("total_amount >= ?", *filter.MinTotal)
	}
	if filter.MaxTotal != nil {
		q = q.Where("total_amount <= ?", *filter.MaxTotal)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	if err := q.Order("id ASC").Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, spanError(span, "select failed", err)
	}
	span.SetAttributes(attribute.Int("purchase_order.count", len(orders)))
	return orders, nil
}

// Count returns the total number of stored purchase orders.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.Count")
	defer span.End()

	n, err := r.reader.NewSelect().Model((*entity.PurchaseOrder)(nil)).Count(ctx)
	if err != nil {
		return 0, spanError(span, "count failed", err)
	}
	return n, nil
}

// ExistsByOrderNumber reports whether any purchase order already uses orderNumber.
func (r *Repository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "PurchaseOrderRepository.ExistsByOrderNumber", trace.WithAttributes(attribute.String("purchase_order.number", orderNumber)))
	defer span.End()

	exists, err := r.writer.NewSelect().
		Model((*entity.PurchaseOrder)(nil)).
		Where("order_number = ?", orderNumber).
		Exists(ctx)
	if err != nil {
		return false, spanError(span, "exists failed", err)
	}
	return exists, nil
}

func spanError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

// translate maps driver specific unique violations onto ErrDuplicateOrderNumber.
func translate(err error) error {
	if isUniqueViolation(err) {
		return errors.Join(ErrDuplicateOrderNumber, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
