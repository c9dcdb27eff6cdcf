package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/procurement/pkg/errorbank"
)

// ErrorContextKey holds the rendered *errorbank.AppError on the echo context
// so request logging can report it.
const ErrorContextKey = "response.error"

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Envelope is the success body shared by every endpoint.
type Envelope struct {
	Timestamp      time.Time      `json:"timestamp"`
	Status         int            `json:"status"`
	Message        string         `json:"message"`
	Data           any            `json:"data,omitempty"`
	Count          *int           `json:"count,omitempty"`
	AppliedFilters map[string]any `json:"appliedFilters,omitempty"`
}

// ErrorEnvelope is the failure body shared by every endpoint.
type ErrorEnvelope struct {
	Timestamp time.Time      `json:"timestamp"`
	Status    int            `json:"status"`
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Builder helps construct consistent HTTP responses.
type Builder struct {
	ctx     echo.Context
	status  int
	message string
	data    any
	count   *int
	filters map[string]any
	err     error
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithMessage sets the human readable outcome.
func (b *Builder) WithMessage(message string) *Builder {
	b.message = message
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithCount reports the number of records in a list payload.
func (b *Builder) WithCount(n int) *Builder {
	b.count = &n
	return b
}

// WithAppliedFilter records a filter the caller supplied. Nil values are ignored.
func (b *Builder) WithAppliedFilter(key string, value any) *Builder {
	if key == "" || value == nil {
		return b
	}
	if b.filters == nil {
		b.filters = make(map[string]any)
	}
	b.filters[key] = value
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	return b.buildSuccess()
}

func (b *Builder) buildSuccess() error {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.ctx.JSON(b.status, Envelope{
		Timestamp:      now(),
		Status:         b.status,
		Message:        b.message,
		Data:           b.data,
		Count:          b.count,
		AppliedFilters: b.filters,
	})
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	b.ctx.Set(ErrorContextKey, appErr)

	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}
	return b.ctx.JSON(status, ErrorEnvelope{
		Timestamp: now(),
		Status:    status,
		Error:     appErr.Category(),
		Message:   appErr.PublicMessage(),
		Details:   appErr.Details(),
	})
}
