package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

const (
	maxPromptTextChars = 4500
	topScoreHints      = 5
)

const domainGuide = `- juridico: lawsuits, contracts, rulings, official notices, police reports.
- pessoal_saude: exams, medical reports, prescriptions, personal health records.
- financeiro_pagamentos: bank slips, payment receipts, invoices, tax receipts (notas fiscais).
- financeiro_fiscal: taxes, tax returns, DARF, DAS, documents from tax agencies.
- financeiro_invest: bank statements, investment positions, financial reports.
- carreira_geral: resumes, payslips, employment contracts, HR documents.
- profissional_tecnico: technical and professional material (IT, engineering, business).
- educacao_estudos: study material, handouts, exams, course certificates.
- midia_imagens: photos, screenshots and images without document value.
- softwares: installers (.dmg, .pkg, .iso, .zip) and program binaries.
- outros: files that do not clearly fit any of the above.`

type promptInput struct {
	ReferenceDate string
	FileName      string
	Extension     string
	Metadata      string
	Text          string
	Catalog       domain.Catalog
	Scores        domain.DomainScores
}

func buildDecisionPrompt(in promptInput) string {
	text := truncateRunes(in.Text, maxPromptTextChars)
	if strings.TrimSpace(text) == "" {
		text = "NO READABLE TEXT - RELY ON THE FILE NAME AND METADATA"
	}
	metadata := in.Metadata
	if strings.TrimSpace(metadata) == "" {
		metadata = "(none)"
	}
	scores := in.Scores.Display(topScoreHints)
	if scores == "" {
		scores = "  (no scores available)"
	}

	var catalog strings.Builder
	for i, cat := range in.Catalog.Categories {
		if i > 0 {
			catalog.WriteString("\n")
		}
		catalog.WriteString(fmt.Sprintf("- ID: '%s'\n  DESCRIPTION: %s", cat.Key, cat.Description))
	}

	return fmt.Sprintf(`[SYSTEM ROLE]
You are a JSON file classification engine.
Analyze metadata and OCR text to categorize files with high precision.
Reference date (today): %s

[INPUT DATA]
File: "%s"
Metadata: %s

[OCR CONTENT START]
%s
[OCR CONTENT END]

[AVAILABLE CATEGORIES - USE ONLY THESE KEYS (IDs)]
%s

[DOMAINS BY THEME - USAGE EXAMPLES]
%s

[PRELIMINARY ANALYSIS - AUTOMATIC SCORES]
A keyword scoring module computed the affinity of this file with each domain.
These scores are ONLY hints, not final decisions:

%s

Use them like this:
- If the top domain makes sense for the content and is clearly above the others, it is a good candidate.
- If several domains have similar scores, read the context and decide by the file's main PURPOSE.
- If every score is low and the content is not a document, consider 'midia_imagens' or '%s'.

[DECISION PROTOCOL - GENERAL ORDER]

1. EXTENSION ANALYSIS:
   - .dmg, .pkg, .iso, .exe -> category 'softwares'. Ignore the text.
   - .jpg/.png where OCR found no relevant text -> category 'midia_imagens'.

2. PURPOSE OF THE FILE (more important than isolated words):
   - Formalizes a RIGHT/DUTY (lawsuit, contract, official notice) -> 'juridico'.
   - Records a PAYMENT or CHARGE -> 'financeiro_pagamentos'.
   - Records HEALTH data (exam result, prescription, medical report) -> 'pessoal_saude'.
   - Career document (resume, payslip, employment contract) -> 'carreira_geral'.
   - Study material (handout, exam, mock test, course certificate) -> 'educacao_estudos'.
   - Explanatory/technical material that is neither legal nor financial -> 'profissional_tecnico'.
   - Hard to classify but with some document text: pick the best scoring domain that makes sense.
   - Decorative image or screenshot without document value -> 'midia_imagens'.

3. CONTEXT CONFLICTS (avoid false positives):
   - Legal words in clearly explanatory or marketing material -> 'profissional_tecnico', not 'juridico'.
   - Health terms in a payment receipt -> 'financeiro_pagamentos', not 'pessoal_saude'.
   - Always ask: "What is the practical reason to keep this file?"

4. DATE EXTRACTION:
   - Find the main date of the document (issue, due date, execution, report date).
   - If none is found, you may use the creation date from the metadata.
   - MANDATORY format in the answer: YYYY-MM-DD.

5. NAMING RULES:
   - Format: YYYY-MM-DD__Entity__Type__Detail.ext
   - Examples:
       2023-05-20__Nubank__Fatura__Maio.pdf
       2024-10-01__Laboratorio_X__Exame_Hemograma.pdf
       2025-01-01__Curso_Y__Certificado_Conclusao.pdf
   - Remove accents and spaces (use underscore), avoid special characters.

[OUTPUT FORMAT]
Return ONLY one valid JSON object. No markdown, no extra explanations.

{
  "thought": "Explain the reasoning in 1-2 sentences.",
  "category": "category_id",
  "new_name": "YYYY-MM-DD__Entity__Type__Detail%s"
}
`,
		in.ReferenceDate,
		in.FileName,
		metadata,
		text,
		catalog.String(),
		domainGuide,
		scores,
		in.Catalog.Fallback,
		in.Extension,
	)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
