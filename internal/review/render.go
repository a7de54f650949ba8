package review

import (
	"github.com/phrazzld/mdquiz/internal/cloze"
	"github.com/phrazzld/mdquiz/internal/domain"
)

// occlusionErrorText is shown in place of a render whose occlusion markers
// are unbalanced. The broken card stays visible to the learner instead of
// crashing the session.
const occlusionErrorText = "Error: mismatched opening occlusion"

// renderQuestion produces the displayed question text for a card.
func renderQuestion(card *domain.Card) string {
	switch card.Kind {
	case domain.CardKindNormal:
		return card.Front
	case domain.CardKindCloze:
		rendered, err := cloze.RenderQuestion(card.Source, card.Variant)
		if err != nil {
			return occlusionErrorText
		}
		return rendered
	default:
		return occlusionErrorText
	}
}

// renderAnswer produces the displayed answer text for a card.
func renderAnswer(card *domain.Card) string {
	switch card.Kind {
	case domain.CardKindNormal:
		return card.Back
	case domain.CardKindCloze:
		rendered, err := cloze.RenderAnswer(card.Source)
		if err != nil {
			return occlusionErrorText
		}
		return rendered
	default:
		return occlusionErrorText
	}
}
