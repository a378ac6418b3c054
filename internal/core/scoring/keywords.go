package scoring

const (
	primaryWeight   = 3.0
	secondaryWeight = 1.0
)

// KeywordSet lists the weighted keywords of a scoring domain.
type KeywordSet struct {
	Domain    string
	Primary   []string
	Secondary []string
}

var defaultKeywordSets = []KeywordSet{
	{
		Domain: "juridico",
		Primary: []string{
			"procon", "processo", "juiz", "juíza", "advogado", "advogada",
			"intimação", "ação judicial", "sentença", "acórdão", "tribunal",
			"contrato", "cláusula", "procuração",
		},
		Secondary: []string{
			"consumidor", "réu", "autor", "reclamante", "acordo", "notificação",
			"prazo de defesa",
		},
	},
	{
		Domain: "pessoal_saude",
		Primary: []string{
			"exame", "laudo", "hemograma", "raio x", "tomografia", "ultrassom",
			"ultrassonografia", "consulta", "receita médica", "prescrição",
			"crm", "atestado médico",
		},
		Secondary: []string{
			"saúde", "paciente", "laboratório", "clínica", "hospital", "médico",
			"médica", "resultado de exame",
		},
	},
	{
		Domain: "financeiro_pagamentos",
		Primary: []string{
			"boleto", "fatura", "comprovante", "pagamento", "pagto", "pix",
			"nota fiscal", "nfe", "nf-e", "danfe", "recibo",
		},
		Secondary: []string{
			"vencimento", "data de vencimento", "valor", "código de barras",
			"banco", "conta", "agência",
		},
	},
	{
		Domain: "financeiro_fiscal",
		Primary: []string{
			"imposto de renda", "irpf", "darf", "das", "guia de recolhimento",
			"declaração", "carnê leão",
		},
		Secondary: []string{
			"receita federal", "código de receita", "exercício", "ano-calendário",
		},
	},
	{
		Domain: "financeiro_invest",
		Primary: []string{
			"extrato", "investimento", "tesouro direto", "cdb", "fii",
			"fundo de investimento", "posição consolidada",
		},
		Secondary: []string{
			"corretora", "broker", "custódia", "patrimônio",
		},
	},
	{
		Domain: "carreira_geral",
		Primary: []string{
			"currículo", "cv", "holerite", "contracheque", "contrato de trabalho",
			"admissão", "demissão", "folha de pagamento",
		},
		Secondary: []string{
			"vaga", "processo seletivo", "recrutamento", "cargo", "função",
		},
	},
	{
		Domain: "profissional_tecnico",
		Primary: []string{
			"arquitetura", "diagrama", "roadmap", "proposta técnica",
			"documentação técnica", "infraestrutura", "deploy", "pipeline",
			"especificação técnica", "manual técnico",
		},
		Secondary: []string{
			"api", "endpoint", "servidor", "cluster", "dashboard",
			"relatório técnico", "sistema", "plataforma", "ambiente",
		},
	},
	{
		Domain: "educacao_estudos",
		Primary: []string{
			"apostila", "exercícios", "lista de exercícios", "prova",
			"simulado", "resumo", "conteúdo programático", "aula",
			"material de estudo", "avaliação",
		},
		Secondary: []string{
			"universidade", "faculdade", "curso online", "ead",
			"e-learning", "certificado de conclusão",
		},
	},
}

// DefaultKeywordSets returns a copy of the built-in domain tables in
// enumeration order.
func DefaultKeywordSets() []KeywordSet {
	out := make([]KeywordSet, len(defaultKeywordSets))
	copy(out, defaultKeywordSets)
	return out
}
