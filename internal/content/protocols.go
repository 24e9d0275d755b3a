package content

import (
	"context"
	"fmt"

	"server/internal/domain"
)

const typeProtocol = "protocol"

// CreateProtocol persists a new protocol document and returns its id.
func (c *Client) CreateProtocol(ctx context.Context, protocol *domain.Protocol) (string, error) {
	if protocol.PreviewImage.AssetID == "" {
		return "", fmt.Errorf("content: protocol requires a preview image: %w", domain.ErrInvalidInput)
	}
	id, err := c.createDocument(ctx, typeProtocol, protocol)
	if err != nil {
		return "", err
	}
	if c.logger != nil {
		c.logger.Info().Str("protocol_id", id).Str("title", protocol.Title).Msg("content: protocol created")
	}
	return id, nil
}

// ProtocolByID fetches one protocol document.
func (c *Client) ProtocolByID(ctx context.Context, id string) (*domain.Protocol, error) {
	var protocol domain.Protocol
	if err := c.getDocument(ctx, typeProtocol, id, &protocol); err != nil {
		return nil, err
	}
	protocol.ID = id
	return &protocol, nil
}

// ProtocolsByPractitioner returns every protocol owned by the practitioner,
// newest first.
func (c *Client) ProtocolsByPractitioner(ctx context.Context, practitionerID string) ([]domain.Protocol, error) {
	docs, err := c.queryDocuments(ctx, typeProtocol, map[string]string{"practitioner_id": practitionerID})
	if err != nil {
		return nil, err
	}
	protocols := make([]domain.Protocol, 0, len(docs))
	for _, doc := range docs {
		var protocol domain.Protocol
		if err := decodeDocument(doc, &protocol); err != nil {
			return nil, err
		}
		protocol.ID = doc.ID
		protocols = append(protocols, protocol)
	}
	return protocols, nil
}

// UpdateProtocolStatus patches the protocol lifecycle state.
func (c *Client) UpdateProtocolStatus(ctx context.Context, id string, status domain.ProtocolStatus) error {
	if !domain.ValidProtocolStatus(status) {
		return fmt.Errorf("content: unknown protocol status %q: %w", status, domain.ErrInvalidInput)
	}
	return c.patchDocument(ctx, id, map[string]any{"status": status})
}
