package domain

import "time"

// ProtocolStatus enumerates the protocol lifecycle.
type ProtocolStatus string

const (
	ProtocolStatusDraft       ProtocolStatus = "draft"
	ProtocolStatusActive      ProtocolStatus = "active"
	ProtocolStatusPublished   ProtocolStatus = "published"
	ProtocolStatusInactive    ProtocolStatus = "inactive"
	ProtocolStatusWaitingList ProtocolStatus = "waiting_list"
	ProtocolStatusArchived    ProtocolStatus = "archived"
	ProtocolStatusHidden      ProtocolStatus = "hidden"
	ProtocolStatusDeleted     ProtocolStatus = "deleted"
)

// ValidProtocolStatus reports whether s is a known lifecycle state.
func ValidProtocolStatus(s ProtocolStatus) bool {
	switch s {
	case ProtocolStatusDraft, ProtocolStatusActive, ProtocolStatusPublished,
		ProtocolStatusInactive, ProtocolStatusWaitingList, ProtocolStatusArchived,
		ProtocolStatusHidden, ProtocolStatusDeleted:
		return true
	}
	return false
}

// Span is a piece of inline rich text within a block.
type Span struct {
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// Block is one paragraph-level rich-text element of a protocol's about section.
type Block struct {
	Key      string `json:"_key,omitempty"`
	Style    string `json:"style"`
	Children []Span `json:"children"`
}

// FAQ is one question/answer pair attached to a protocol.
type FAQ struct {
	Key      string `json:"_key,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Source is a literature or external reference backing a protocol.
type Source struct {
	Key         string `json:"_key,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Biomarker is a lab measurement tracked by a protocol. ExternalCode carries
// the TUSS procedure code used by Brazilian labs.
type Biomarker struct {
	Key          string `json:"_key,omitempty"`
	Name         string `json:"name"`
	ExternalCode string `json:"external_code,omitempty"`
	Observation  string `json:"observation,omitempty"`
}

// TemplateStep is one ordered step of a how-it-works template. Order is
// 1-based and contiguous within a template.
type TemplateStep struct {
	Key         string `json:"_key,omitempty"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// HowItWorksTemplate explains the patient journey of a protocol. Templates
// built from AI output are dedicated to one protocol; the default template is
// shared across every protocol whose job carried no steps.
type HowItWorksTemplate struct {
	ID          string         `json:"_id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	IsDefault   bool           `json:"is_default"`
	Steps       []TemplateStep `json:"steps"`
}

// ImageRef points at an uploaded image asset in the content store.
type ImageRef struct {
	AssetID string `json:"asset_id"`
	Alt     string `json:"alt,omitempty"`
}

// Protocol is the persisted health-program record a practitioner manages.
type Protocol struct {
	ID               string         `json:"_id,omitempty"`
	Title            string         `json:"title"`
	ShortDescription string         `json:"short_description"`
	About            []Block        `json:"about,omitempty"`
	FAQ              []FAQ          `json:"faq,omitempty"`
	Sources          []Source       `json:"sources,omitempty"`
	Biomarkers       []Biomarker    `json:"biomarkers,omitempty"`
	Status           ProtocolStatus `json:"status"`
	PractitionerID   string         `json:"practitioner_id"`
	TemplateID       string         `json:"template_id"`
	PreviewImage     ImageRef       `json:"preview_image"`
	ShopifyProductID int64          `json:"shopify_product_id,omitempty"`
	PreviewImageURL  string         `json:"preview_image_url,omitempty"`
	CreatedAt        time.Time      `json:"created_at,omitempty"`
}
