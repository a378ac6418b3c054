package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsDiacriticsAndCase(t *testing.T) {
	require.Equal(t, "acao medica", Normalize("AÇÃO Médica"))
	require.Equal(t, "", Normalize(""))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, input := range []string{"Intimação Judicial", "São Paulo, Ñandú", "plain ascii", "Über Straße"} {
		once := Normalize(input)
		require.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestScoreEmptyTextIsZero(t *testing.T) {
	scorer := NewScorer(nil, nil)
	for _, d := range scorer.Domains() {
		require.Zero(t, scorer.Score("", d))
	}
}

func TestScoreUnknownDomainIsZero(t *testing.T) {
	scorer := NewScorer(nil, nil)
	require.Zero(t, scorer.Score("laudo hemograma", "astrologia"))
}

func TestScoreWeightsAndLengthFloor(t *testing.T) {
	scorer := NewScorer(nil, nil)

	// 3 words fall under the 10-word floor: (3 + 3 + 1) / (10 / 50).
	got := scorer.Score("laudo hemograma paciente", "pessoal_saude")
	require.InDelta(t, 35.0, got, 1e-9)
}

func TestScoreMatchesAccentedKeywordsAfterNormalization(t *testing.T) {
	scorer := NewScorer(nil, nil)
	require.InDelta(t, 30.0, scorer.Score("Intimação do JUIZ", "juridico"), 1e-9)
}

func TestScoreNormalizesByWordCount(t *testing.T) {
	scorer := NewScorer([]KeywordSet{{Domain: "d", Primary: []string{"boleto"}}}, nil)

	text := "boleto"
	for i := 0; i < 99; i++ {
		text += " palavra"
	}
	// 100 words: 3 / (100 / 50).
	require.InDelta(t, 1.5, scorer.Score(text, "d"), 1e-9)
}

func TestScoreAllSortedDescendingAndDeterministic(t *testing.T) {
	scorer := NewScorer(nil, nil)
	text := "Laudo de exame: hemograma completo. Paciente atendido na clínica. Pagamento via pix."

	first := scorer.ScoreAll(text)
	second := scorer.ScoreAll(text)
	require.Equal(t, first, second)
	require.Equal(t, "pessoal_saude", first[0].Domain)
	for i := 1; i < len(first); i++ {
		require.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
	for _, s := range first {
		require.GreaterOrEqual(t, s.Score, 0.0)
	}
}

func TestScoreAllTiesKeepEnumerationOrder(t *testing.T) {
	scorer := NewScorer(nil, nil)
	scores := scorer.ScoreAll("")

	domains := make([]string, 0, len(scores))
	for _, s := range scores {
		domains = append(domains, s.Domain)
	}
	require.Equal(t, scorer.Domains(), domains)
}

func TestDefaultKeywordSetsReturnsCopy(t *testing.T) {
	sets := DefaultKeywordSets()
	sets[0].Domain = "changed"
	require.Equal(t, "juridico", DefaultKeywordSets()[0].Domain)
}
