package port

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

type ResourceLister[T any] interface {
	List(context.Context, domain.Query) (domain.Page[T], error)
}

type StatsFetcher interface {
	Stats(context.Context) (domain.Stats, error)
}

type ResourceMutator[T any, In any] interface {
	Create(context.Context, In) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	Delete(ctx context.Context, id string) error
}

type ResourceToggler[T any] interface {
	ToggleActive(ctx context.Context, id string) (T, error)
}

// A ResourceClient issues the CRUD calls of one resource kind.
type ResourceClient[T any, In any] interface {
	ResourceLister[T]
	StatsFetcher
	ResourceMutator[T, In]
	ResourceToggler[T]
}

// An AdminClient manages admin accounts. It has no toggle endpoint;
// activation goes through Update.
type AdminClient interface {
	ResourceLister[domain.Admin]
	StatsFetcher
	ResourceMutator[domain.Admin, domain.AdminInput]
}

type OrderClient interface {
	ResourceLister[domain.Order]
	UpdateStatus(
		ctx context.Context, id string, status domain.OrderStatus,
	) (domain.Order, error)
	ApproveRefund(ctx context.Context, id, adminNotes string) (domain.Order, error)
	RejectRefund(ctx context.Context, id, reason string) (domain.Order, error)
}

type CategoryOptionsLister interface {
	ActiveCategories(context.Context) ([]domain.CategoryRef, error)
}

type CategoryOptionsInvalidator interface {
	InvalidateCategoryOptions(context.Context) error
}

type AuthClient interface {
	Login(context.Context, domain.Credentials) (domain.SessionState, error)
	Profile(context.Context) (domain.Admin, error)
	ChangePassword(ctx context.Context, current, next string) error
}

type Uploader interface {
	UploadImage(
		ctx context.Context, filename string, r io.Reader, folder string,
	) (string, error)
}

// A CredentialSource hands the bearer credential to the API client.
//
// Invalidate is called when the API rejects the credential.
type CredentialSource interface {
	Token() (string, error)
	Invalidate()
}

type SessionVault interface {
	Load() (domain.SessionState, error)
	Save(domain.SessionState) error
	Delete() error
}

// A Notifier is the toast surface of the dashboard.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type ActivityPublisher interface {
	Publish(context.Context, domain.Activity) error
}

type ListMetrics interface {
	FetchIssued(domain.ResourceKind)
	FetchCompleted(domain.ResourceKind, time.Duration, error)
	StaleDiscarded(domain.ResourceKind)
}

type ActivitySaver interface {
	SaveActivity(context.Context, []domain.Activity) error
}

type ActivityStorage interface {
	StoreActivity(context.Context, []domain.Activity) error
}

type ActivityCounterProcessor interface {
	runnerContextWg
	closer
}
