package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

const (
	frenchRequest  = "Je cherche un restaurant français dans le 4e arrondissement pour 6 personnes"
	englishRequest = "Looking for a French restaurant in the 4th arrondissement for 6 people"
	englishAnswer  = "I recommend Le Jardin. Please note it is located outside the requested area, in the 1st arrondissement."
	frenchAnswer   = "Je vous recommande Le Jardin. Veuillez noter qu'il se trouve en dehors du secteur demandé, dans le 1er arrondissement."
)

func newTestConcierge(t *testing.T, lang domain.Language) (driving.RecommendationService, *mocks.MockTranslator, *mocks.MockLLMService) {
	t.Helper()

	llm := mocks.NewMockLLMService(englishAnswer)
	services, _ := newTestServices(t, llm, leJardin())

	translator := mocks.NewMockTranslator()
	translator.Phrases[frenchRequest] = englishRequest
	translator.Phrases[englishAnswer] = frenchAnswer
	services.SetTranslator(translator)

	svc := NewConciergeService(
		NewEngine(services, DefaultEngineConfig()),
		mocks.NewMockLanguageDetector(lang),
		services,
		ConciergeConfig{Timeout: 5 * time.Second},
	)
	return svc, translator, llm
}

func TestConcierge_EnglishMakesNoTranslationCalls(t *testing.T) {
	svc, translator, llm := newTestConcierge(t, domain.LanguageEnglish)

	rec, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: englishRequest})
	require.NoError(t, err)

	assert.Equal(t, 0, translator.CallCount())
	assert.Equal(t, englishAnswer, rec.Answer)
	assert.Equal(t, rec.Answer, rec.AnswerEnglish)
	assert.Equal(t, domain.LanguageEnglish, rec.Query.Language)
	assert.Equal(t, englishRequest, rec.Query.English)
	assert.Contains(t, llm.LastRequest().Prompt, englishRequest)
	assert.NotEmpty(t, rec.ID)
}

func TestConcierge_FrenchRoundTrip(t *testing.T) {
	svc, translator, llm := newTestConcierge(t, domain.LanguageFrench)

	rec, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: frenchRequest})
	require.NoError(t, err)

	assert.Equal(t, domain.LanguageFrench, rec.Query.Language)
	assert.NotEqual(t, rec.Query.Original, rec.Query.English)
	assert.Equal(t, englishRequest, rec.Query.English)

	// Retrieval and generation ran on the English text
	assert.Contains(t, llm.LastRequest().Prompt, englishRequest)
	assert.Equal(t, 1, llm.Calls(), "answer must be translated, not regenerated")

	// The final answer is the back-translation of the English answer
	assert.Equal(t, frenchAnswer, rec.Answer)
	assert.Equal(t, englishAnswer, rec.AnswerEnglish)

	require.Len(t, translator.Calls, 2)
	assert.Equal(t, mocks.TranslateCall{Text: frenchRequest, Source: domain.LanguageFrench, Target: domain.LanguageEnglish}, translator.Calls[0])
	assert.Equal(t, mocks.TranslateCall{Text: englishAnswer, Source: domain.LanguageEnglish, Target: domain.LanguageFrench}, translator.Calls[1])
}

func TestConcierge_AppendedDisclosureIsTranslated(t *testing.T) {
	svc, translator, llm := newTestConcierge(t, domain.LanguageFrench)
	llm.Response = "I recommend Le Jardin."

	rec, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: frenchRequest})
	require.NoError(t, err)

	require.Len(t, rec.Disclosures, 1)
	assert.Contains(t, rec.AnswerEnglish, "outside the requested 4th arrondissement")
	assert.Equal(t, rec.AnswerEnglish, translator.Calls[1].Text)
	assert.Equal(t, "[fr] "+rec.AnswerEnglish, rec.Answer)
}

func TestConcierge_TranslationFailureSurfaces(t *testing.T) {
	svc, translator, llm := newTestConcierge(t, domain.LanguageFrench)
	translator.Err = errors.New("quota exceeded")

	rec, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: frenchRequest})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrTranslationService)
	assert.Equal(t, 0, llm.Calls())
	assert.Equal(t, 1, translator.CallCount(), "translation must not be retried")
}

func TestConcierge_EmptyTranslationIsAnError(t *testing.T) {
	svc, translator, _ := newTestConcierge(t, domain.LanguageFrench)
	translator.Phrases[englishAnswer] = "   "

	rec, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: frenchRequest})
	assert.Nil(t, rec, "no partial recommendation on failure")
	assert.ErrorIs(t, err, domain.ErrTranslationService)
}

func TestConcierge_NoTranslatorForForeignInput(t *testing.T) {
	llm := mocks.NewMockLLMService(englishAnswer)
	services, _ := newTestServices(t, llm, leJardin())
	svc := NewConciergeService(NewEngine(services, DefaultEngineConfig()),
		mocks.NewMockLanguageDetector(domain.LanguageGerman), services, ConciergeConfig{})

	_, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: "Ein Restaurant bitte"})
	assert.ErrorIs(t, err, domain.ErrTranslationService)
}

func TestConcierge_NoDetectorUsesDefaultLanguage(t *testing.T) {
	llm := mocks.NewMockLLMService(englishAnswer)
	services, _ := newTestServices(t, llm, leJardin())
	svc := NewConciergeService(NewEngine(services, DefaultEngineConfig()), nil, services, ConciergeConfig{})

	rec, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: englishRequest})
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageEnglish, rec.Query.Language)
}

func TestConcierge_InvalidInput(t *testing.T) {
	svc, _, llm := newTestConcierge(t, domain.LanguageEnglish)

	_, err := svc.Recommend(context.Background(), driving.RecommendRequest{Text: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Recommend(context.Background(), driving.RecommendRequest{Text: "dinner", TopK: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, llm.Calls())
}

func TestConcierge_CancelledContext(t *testing.T) {
	svc, _, _ := newTestConcierge(t, domain.LanguageEnglish)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := svc.Recommend(ctx, driving.RecommendRequest{Text: englishRequest})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrGenerationService)
	assert.ErrorIs(t, err, context.Canceled)
}
