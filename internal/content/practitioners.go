package content

import (
	"context"
	"fmt"

	"server/internal/domain"
)

const typePractitioner = "practitioner"

// CreatePractitioner persists a new practitioner document, typically on first
// login.
func (c *Client) CreatePractitioner(ctx context.Context, practitioner *domain.Practitioner) (*domain.Practitioner, error) {
	if practitioner.LoginUserID == "" || practitioner.Name == "" {
		return nil, fmt.Errorf("content: practitioner requires login user id and name: %w", domain.ErrInvalidInput)
	}
	practitioner.IsPhoneVerified = false
	id, err := c.createDocument(ctx, typePractitioner, practitioner)
	if err != nil {
		return nil, err
	}
	created := *practitioner
	created.ID = id
	return &created, nil
}

// PractitionerByID fetches one practitioner document.
func (c *Client) PractitionerByID(ctx context.Context, id string) (*domain.Practitioner, error) {
	var practitioner domain.Practitioner
	if err := c.getDocument(ctx, typePractitioner, id, &practitioner); err != nil {
		return nil, err
	}
	practitioner.ID = id
	return &practitioner, nil
}

// PractitionerByLoginUserID resolves the practitioner owning the given
// authentication identity.
func (c *Client) PractitionerByLoginUserID(ctx context.Context, loginUserID string) (*domain.Practitioner, error) {
	docs, err := c.queryDocuments(ctx, typePractitioner, map[string]string{"login_user_id": loginUserID})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	var practitioner domain.Practitioner
	if err := decodeDocument(docs[0], &practitioner); err != nil {
		return nil, err
	}
	practitioner.ID = docs[0].ID
	return &practitioner, nil
}

// UpdatePractitioner patches editable profile fields. Nil pointers are left
// untouched.
func (c *Client) UpdatePractitioner(ctx context.Context, id string, fields domain.PractitionerUpdate) error {
	set := map[string]any{}
	if fields.Prefix != nil {
		set["prefix"] = *fields.Prefix
	}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Email != nil {
		set["email"] = *fields.Email
	}
	if fields.Bio != nil {
		set["bio"] = *fields.Bio
	}
	if fields.Headline != nil {
		set["headline"] = *fields.Headline
	}
	if len(set) == 0 {
		return nil
	}
	return c.patchDocument(ctx, id, set)
}

// UpdatePractitionerPhone replaces the phone number and resets verification.
func (c *Client) UpdatePractitionerPhone(ctx context.Context, id string, phoneNumber string) error {
	return c.patchDocument(ctx, id, map[string]any{
		"phone_number":      phoneNumber,
		"is_phone_verified": false,
	})
}
