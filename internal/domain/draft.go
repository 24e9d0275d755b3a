package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DraftStep is one how-it-works step proposed by the AI.
type DraftStep struct {
	Title       string `json:"title" validate:"required"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

// DraftSource is a literature reference proposed by the AI.
type DraftSource struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Link        string `json:"link" validate:"omitempty,url"`
}

// DraftBiomarker is a biomarker proposed by the AI.
type DraftBiomarker struct {
	Name         string `json:"name" validate:"required"`
	ExternalCode string `json:"external_code"`
	Observation  string `json:"observation"`
}

// DraftFAQ is a question/answer pair proposed by the AI. Entries missing
// either side are dropped during materialization rather than rejected here.
type DraftFAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ProtocolDraft is the structured payload a completed job carries. It is the
// contract between the worker and the materializer: worker output that does
// not decode into this shape is rejected before anything is persisted.
type ProtocolDraft struct {
	Title            string           `json:"title" validate:"required"`
	ShortDescription string           `json:"short_description"`
	About            []Block          `json:"about"`
	FAQ              []DraftFAQ       `json:"faq"`
	Sources          []DraftSource    `json:"sources"`
	Biomarkers       []DraftBiomarker `json:"biomarkers"`
	HowItWorks       []DraftStep      `json:"how_it_works"`
}

// DecodeProtocolDraft parses a job result payload into a ProtocolDraft.
func DecodeProtocolDraft(raw []byte) (*ProtocolDraft, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode protocol draft: %w", ErrInvalidInput)
	}
	var draft ProtocolDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode protocol draft: %w", err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("protocol draft missing title: %w", ErrInvalidInput)
	}
	return &draft, nil
}
