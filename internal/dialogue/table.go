package dialogue

import "regexp"

// defaultIntents is the static classification table the engine ships with.
// Keywords are matched against the normalized message; patterns run against
// the original message, casing and punctuation included. Priority is both
// the tie-breaker and a confidence weight.
var defaultIntents = []*Intent{
	{
		ID:       IntentGreeting,
		Name:     "Saudação",
		Priority: 8,
		Keywords: []string{"oi", "olá", "opa", "bom dia", "boa tarde", "boa noite", "tudo bem", "eai", "hey"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(oi+|ol[aá]|opa|e\s?a[ií])[\s!,.?]*$`),
		},
		Responses: []ResponseTemplate{
			{
				Text:       "Olá de novo, ${name}! Em que mais posso ajudar? 😊",
				Conditions: &TemplateConditions{RequiredFields: []string{"nome"}, MinMessages: 2},
			},
			{
				Text:     "Olá! Bem-vindo à ${companyName}! 😊 Como posso te ajudar hoje?",
				FollowUp: "Se quiser, me conta o que você está procurando.",
			},
		},
	},
	{
		ID:       IntentProductInquiry,
		Name:     "Interesse em produto",
		Priority: 7,
		Keywords: []string{"produto", "produtos", "vendem", "vende", "venda", "catálogo", "modelos", "opções", "comprar", "interessado", "procurando", "portão", "portões", "cerca"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)voc[eê]s\s+(vendem|tem|t[eê]m|trabalham\s+com|fazem)`),
			regexp.MustCompile(`(?i)\b(quero|preciso\s+de|procuro)\s+(um|uma|uns|umas)\b`),
		},
		Responses: []ResponseTemplate{
			{
				Text:       "Temos sim! O ${productName} é uma ótima escolha: ${productDescription}",
				FollowUp:   "Quer saber valores ou agendar uma visita?",
				Conditions: &TemplateConditions{ProductMentioned: boolPtr(true)},
			},
			{
				Text:     "Trabalhamos com ${categories}. O que você está procurando?",
				FollowUp: "Me conta um pouco mais que eu te indico a melhor opção!",
			},
		},
	},
	{
		ID:              IntentSpecificProduct,
		Name:            "Detalhes de produto",
		Priority:        9,
		RequiresContext: []ContextRequirement{RequireProductMentioned},
		Keywords:        []string{"detalhes", "mais informações", "me fala mais", "como funciona", "esse produto", "este produto", "especificações", "esse aí"},
		Responses: []ResponseTemplate{
			{
				Text:       "${name}, sobre o ${productName}: ${productDescription}",
				FollowUp:   "Quer que eu te passe o valor?",
				Conditions: &TemplateConditions{RequiredFields: []string{"nome"}},
			},
			{
				Text:     "Sobre o ${productName}: ${productDescription}",
				FollowUp: "Quer que eu te passe o valor?",
			},
		},
	},
	{
		ID:       IntentPriceInquiry,
		Name:     "Consulta de preço",
		Priority: 8,
		Keywords: []string{"preço", "preços", "valor", "valores", "custa", "quanto custa", "quanto fica", "quanto sai", "orçamento", "investimento"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)quanto\s+(custa|fica|sai|vale)`),
			regexp.MustCompile(`(?i)\bR\$\s*\?`),
		},
		Responses: []ResponseTemplate{
			{
				Text:       "O ${productName} sai ${productPrice}. Quer que eu prepare um orçamento detalhado pra você?",
				Conditions: &TemplateConditions{ProductMentioned: boolPtr(true)},
			},
			{
				Text:     "Nossos valores variam conforme o projeto. Qual produto te interessou?",
				FollowUp: "Com essa informação te passo o valor certinho!",
			},
		},
	},
	{
		ID:       IntentCategoryList,
		Name:     "Catálogo de categorias",
		Priority: 6,
		Keywords: []string{"categorias", "tipos", "linhas", "o que vocês vendem", "o que tem", "quais produtos"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)o\s+que\s+(voc[eê]s\s+)?(vendem|oferecem|trabalham)`),
		},
		Responses: []ResponseTemplate{
			{
				Text:     "Hoje trabalhamos com ${categories}.",
				FollowUp: "Qual desses você quer conhecer melhor?",
			},
		},
	},
	{
		ID:       IntentFAQ,
		Name:     "Dúvida frequente",
		Priority: 6,
		Keywords: []string{"horário", "atendimento", "entrega", "garantia", "pagamento", "parcelar", "parcela", "endereço", "nota fiscal", "instalação", "assistência", "manutenção", "funciona"},
		Responses: []ResponseTemplate{
			{
				Text:     "${faqAnswer}",
				FollowUp: "Posso ajudar com mais alguma coisa?",
			},
		},
	},
	{
		ID:       IntentProvideName,
		Name:     "Cliente informa nome",
		Priority: 7,
		Keywords: []string{"meu nome é", "me chamo", "pode me chamar"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)meu\s+nome\s+[eé]\b`),
			regexp.MustCompile(`(?i)\bme\s+chamo\b`),
		},
		Responses: []ResponseTemplate{
			{
				Text:       "Prazer, ${name}! 😊 Qual o melhor telefone com DDD pra gente falar com você?",
				Conditions: &TemplateConditions{RequiredFields: []string{"nome"}, ForbiddenFields: []string{"telefone"}},
			},
			{
				Text:       "Anotado, ${name}! E seu e-mail, pode me passar?",
				Conditions: &TemplateConditions{RequiredFields: []string{"nome", "telefone"}, ForbiddenFields: []string{"email"}},
			},
			{
				Text:     "Prazer em te conhecer! Me conta, o que você está procurando?",
				FollowUp: "Temos várias opções que podem te atender.",
			},
		},
	},
	{
		ID:       IntentProvideContact,
		Name:     "Cliente informa contato",
		Priority: 7,
		Keywords: []string{"telefone", "celular", "whatsapp", "zap", "email", "e-mail", "contato", "me liga", "pode ligar"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\(?\d{2}\)?[\s.\-]?\d{4,5}[\s.\-]?\d{4}`),
			regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		},
		Responses: []ResponseTemplate{
			{
				Text:       "Perfeito, anotei seu telefone! Se quiser, me passa também seu e-mail pra eu te enviar o material completo.",
				Conditions: &TemplateConditions{RequiredFields: []string{"telefone"}, ForbiddenFields: []string{"email"}},
			},
			{
				Text:       "Contatos anotados, ${name}! Nossa equipe vai falar com você em breve. 😊",
				Conditions: &TemplateConditions{RequiredFields: []string{"telefone", "email"}},
			},
			{
				Text: "Pode me passar seu telefone com DDD, por favor?",
			},
		},
	},
	{
		ID:       IntentScheduleVisit,
		Name:     "Agendamento de visita",
		Priority: 7,
		Keywords: []string{"visita", "agendar", "agendamento", "visita técnica", "medição", "vir aqui", "passar aqui", "ir até", "presencial"},
		Responses: []ResponseTemplate{
			{
				Text:       "Claro! Pra agendar a visita técnica, me passa seu nome e telefone com DDD?",
				Conditions: &TemplateConditions{ForbiddenFields: []string{"telefone"}},
			},
			{
				Text:     "Podemos agendar uma visita técnica sem compromisso, ${name}! Qual o melhor dia e horário pra você?",
				FollowUp: "A visita inclui medição e orçamento na hora.",
			},
		},
	},
	{
		ID:       IntentThanks,
		Name:     "Agradecimento",
		Priority: 5,
		Keywords: []string{"obrigado", "obrigada", "valeu", "agradeço", "muito obrigado"},
		Responses: []ResponseTemplate{
			{
				Text: "Imagina! Precisando, é só chamar. 😊",
			},
		},
	},
	{
		ID:       IntentGoodbye,
		Name:     "Despedida",
		Priority: 5,
		Keywords: []string{"tchau", "até logo", "até mais", "falou", "encerrar", "até breve"},
		Responses: []ResponseTemplate{
			{
				Text:       "Obrigado pelo contato, ${name}! Vamos te retornar em breve. Até logo! 👋",
				Conditions: &TemplateConditions{RequiredFields: []string{"nome", "telefone"}},
			},
			{
				Text: "Obrigado pelo contato! Até logo! 👋",
			},
		},
	},
	{
		// The designated fallback: zero priority, no matching rules, always
		// available so classification is total.
		ID:       IntentFallback,
		Name:     "Não entendi",
		Priority: 0,
		Responses: []ResponseTemplate{
			{
				Text:     "Desculpe, não entendi muito bem. 🤔 Pode reformular?",
				FollowUp: "Posso te ajudar com informações sobre produtos, preços ou agendamento de visita.",
			},
		},
	},
}

// DefaultIntents returns the built-in classification table. Callers must
// treat the returned slice and its entries as read-only.
func DefaultIntents() []*Intent {
	return defaultIntents
}
