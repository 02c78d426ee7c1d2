package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
	"github.com/egannguyen/go-commerce-api/internal/entity"
	"github.com/egannguyen/go-commerce-api/internal/messaging"
	"github.com/egannguyen/go-commerce-api/internal/validation"
)

// DefaultPageSize is used when a listing does not ask for a page size.
const DefaultPageSize = 5

// PageQuery is the page selection of a listing request.
type PageQuery struct {
	Page int
	Take int
}

// pagination falls back to defaultSize when no size was asked for. Sizes
// above entity.MaxPerPage are capped.
func (q PageQuery) pagination(defaultSize int) entity.Pagination {
	size := q.Take
	if size < 1 {
		size = defaultSize
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return entity.NewPagination(q.Page, size)
}

// validate runs struct validation and merges extra field checks.
func validate(v *validation.Validator, in any, extra ...func(*apperr.ValidationError) error) error {
	verr, err := v.Struct(in)
	if err != nil {
		return err
	}
	if verr == nil {
		verr = apperr.NewValidation()
	}
	for _, check := range extra {
		if err := check(verr); err != nil {
			return err
		}
	}
	return verr.ErrOrNil()
}

// publish hands an event to the broker. Failures are logged because the
// state change is already committed.
func publish(ctx context.Context, p messaging.Publisher, logger log.FieldLogger, topic, key string, event entity.Event) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"topic":      topic,
			"key":        key,
			"event_type": event.EventType(),
		}).Error("Failed to publish event")
	}
}

func utcNow() time.Time { return time.Now().UTC() }
