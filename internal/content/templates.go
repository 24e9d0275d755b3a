package content

import (
	"context"

	"server/internal/domain"
)

const typeTemplate = "how_it_works_template"

// CreateTemplate persists a how-it-works template and returns its id.
func (c *Client) CreateTemplate(ctx context.Context, template *domain.HowItWorksTemplate) (string, error) {
	id, err := c.createDocument(ctx, typeTemplate, template)
	if err != nil {
		return "", err
	}
	if c.logger != nil {
		c.logger.Info().Str("template_id", id).Bool("is_default", template.IsDefault).Msg("content: template created")
	}
	return id, nil
}

// DefaultTemplate returns the shared default template, or domain.ErrNotFound
// when none has been seeded yet.
func (c *Client) DefaultTemplate(ctx context.Context) (*domain.HowItWorksTemplate, error) {
	docs, err := c.queryDocuments(ctx, typeTemplate, map[string]string{"is_default": "true"})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	var template domain.HowItWorksTemplate
	if err := decodeDocument(docs[0], &template); err != nil {
		return nil, err
	}
	template.ID = docs[0].ID
	return &template, nil
}
