package domain

import "context"

// JobRepository defines persistence for AI generation jobs. UpdateStatus and
// Claim are worker-side operations; the API only creates and reads rows.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, errMsg *string, resultJSON []byte) error
	ClaimPending(ctx context.Context) (*Job, error)
}

// OrderRepository is the relational query surface over imported orders.
type OrderRepository interface {
	ListLineItemsByProductIDs(ctx context.Context, productIDs []int64) ([]LineItem, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]LineItem, error)
}

// ProtocolStore persists protocol documents in the content store. The store
// interfaces below are deliberately non-overlapping so a single content-store
// backend can implement all of them.
type ProtocolStore interface {
	CreateProtocol(ctx context.Context, protocol *Protocol) (string, error)
	ProtocolByID(ctx context.Context, id string) (*Protocol, error)
	ProtocolsByPractitioner(ctx context.Context, practitionerID string) ([]Protocol, error)
	UpdateProtocolStatus(ctx context.Context, id string, status ProtocolStatus) error
}

// TemplateStore persists how-it-works templates. DefaultTemplate returns
// ErrNotFound when no default template has been seeded yet.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, template *HowItWorksTemplate) (string, error)
	DefaultTemplate(ctx context.Context) (*HowItWorksTemplate, error)
}

// PractitionerStore persists practitioner documents.
type PractitionerStore interface {
	CreatePractitioner(ctx context.Context, practitioner *Practitioner) (*Practitioner, error)
	PractitionerByID(ctx context.Context, id string) (*Practitioner, error)
	PractitionerByLoginUserID(ctx context.Context, loginUserID string) (*Practitioner, error)
	UpdatePractitioner(ctx context.Context, id string, fields PractitionerUpdate) error
	UpdatePractitionerPhone(ctx context.Context, id string, phoneNumber string) error
}

// ImageProvisioner supplies a preview image reference for a new protocol.
// Protocols are never persisted without one.
type ImageProvisioner interface {
	DefaultImage(ctx context.Context) (ImageRef, error)
}
