package genai

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// syntheticDraft builds a deterministic draft from the prompt alone. The
// shape mirrors real model output so the rest of the pipeline exercises the
// same code paths.
func syntheticDraft(prompt string) *domain.ProtocolDraft {
	title := titleFromPrompt(prompt)
	return &domain.ProtocolDraft{
		Title:            title,
		ShortDescription: fmt.Sprintf("Protocolo gerado a partir do pedido: %s", prompt),
		About: []domain.Block{
			{
				Style: "normal",
				Children: []domain.Span{
					{Text: fmt.Sprintf("Este protocolo foi estruturado com base no objetivo descrito pelo profissional: %s.", prompt)},
				},
			},
		},
		FAQ: []domain.DraftFAQ{
			{
				Question: "Como este protocolo foi criado?",
				Answer:   "A versão inicial foi gerada automaticamente e deve ser revisada pelo profissional antes da publicação.",
			},
		},
		Biomarkers: []domain.DraftBiomarker{
			{Name: "Hemograma completo", ExternalCode: "40304361", Observation: "Avaliação geral inicial."},
		},
	}
}

func titleFromPrompt(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) > 8 {
		words = words[:8]
	}
	title := strings.Join(words, " ")
	if title == "" {
		title = "Novo Protocolo"
	}
	return title
}
