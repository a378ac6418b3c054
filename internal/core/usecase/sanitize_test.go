package usecase

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

func TestSanitizeFilenameKeepsConventionalName(t *testing.T) {
	got := SanitizeFilename("2024-10-01__Laboratorio_X__Exame_Hemograma.pdf", "scan001.pdf")
	require.Equal(t, "2024-10-01__Laboratorio_X__Exame_Hemograma.pdf", got)
}

func TestSanitizeFilenameStripsQuotesAndUnsafeCharacters(t *testing.T) {
	got := SanitizeFilename(`"2023-05-20__Nubank / Fatura__Maio (final)'.pdf"`, "fatura.pdf")
	require.Equal(t, "2023-05-20__NubankFatura__Maiofinal.pdf", got)
}

func TestSanitizeFilenameAppendsMissingExtension(t *testing.T) {
	require.Equal(t, "2024-01-01__Banco__Extrato.pdf", SanitizeFilename("2024-01-01__Banco__Extrato", "x.pdf"))
	require.Equal(t, "2024-01-01__Banco__Extrato.txt.pdf", SanitizeFilename("2024-01-01__Banco__Extrato.txt", "x.pdf"))
}

func TestSanitizeFilenameExtensionCheckIsCaseInsensitive(t *testing.T) {
	require.Equal(t, "2024-01-01__Foto.JPG", SanitizeFilename("2024-01-01__Foto.JPG", "IMG_1.jpg"))
}

func TestSanitizeFilenameFallsBackToOriginalForEmptyProposal(t *testing.T) {
	require.Equal(t, "relatoriofinal.pdf", SanitizeFilename("", "relatorio final.pdf"))
	require.Equal(t, "relatorio_final.pdf", SanitizeFilename("çãõ.pdf", "relatorio_final.pdf"))
	require.Equal(t, "o.pdf", SanitizeFilename("", "ção.pdf"))
	require.Equal(t, "file.pdf", SanitizeFilename("çã.pdf", "çã.pdf"))
}

func TestSanitizeFilenameCleansOriginalExtension(t *testing.T) {
	got := SanitizeFilename("2024-01-01__X__Y", "foto.jpég")
	require.Equal(t, "2024-01-01__X__Y.jpg", got)
	require.Regexp(t, safeName, got)
	require.Equal(t, "2024-01-01__X__Y", SanitizeFilename("2024-01-01__X__Y", "notas.çã"))
}

func TestSanitizeFilenameNeverProducesHiddenNames(t *testing.T) {
	got := SanitizeFilename("../../etc/passwd", "notes.txt")
	require.False(t, strings.HasPrefix(got, "."))
	require.Equal(t, "etcpasswd.txt", got)
}

func TestSanitizeFilenameProperty(t *testing.T) {
	proposals := []string{
		"", " ", "'", `"a"`, "ação judicial.pdf", "2024-01-01__A__B__C.pdf", "???", "..", "a/b\\c:d*e",
		"名前.pdf", "emoji 😀 name", "trailing.", "UPPER.PDF", "x.docx",
	}
	originals := []string{"doc.pdf", "photo.JPEG", "archive.tar.gz", "README", "scan.Pdf"}

	for _, original := range originals {
		ext := strings.ToLower(originalExt(original))
		for _, proposed := range proposals {
			got := SanitizeFilename(proposed, original)
			require.Regexp(t, safeName, got, "proposed %q original %q", proposed, original)
			require.True(t, strings.HasSuffix(strings.ToLower(got), ext), "got %q for original %q", got, original)
		}
	}
}

func originalExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
