package poems

// AudioLabels are the audio summary strings.
type AudioLabels struct {
	Button     string
	Generating string
	Download   string
	Listen     string
	Title      string
}

// ArtLabels are the art generator strings.
type ArtLabels struct {
	Title       string
	Subtitle    string
	SelectStyle string
	Generate    string
	Generating  string
	Download    string
	Styles      map[string]string
}

// InfographicLabels are the concept map strings.
type InfographicLabels struct {
	Title      string
	Subtitle   string
	Generate   string
	Button     string
	Generating string
	Download   string
	Note       string
}

// Labels is the interface text for one language.
type Labels struct {
	Title          string
	Subtitle       string
	Prelude        string
	Poems          string
	AskAI          string
	Export         string
	Copy           string
	Copied         string
	ReadMore       string
	Back           string
	AIPlaceholder  string
	Loading        string
	FooterQuote    string
	ChatTitle      string
	ChatIntro      string
	ResponseCopied string
	Audio          AudioLabels
	Art            ArtLabels
	Infographic    InfographicLabels
	Categories     map[Category]string
}

// Category returns the localized category name.
func (l Labels) Category(c Category) string {
	if s, ok := l.Categories[c]; ok {
		return s
	}
	return string(c)
}

// LabelsFor returns the labels for lang, falling back to the default
// language.
func LabelsFor(lang Language) Labels {
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[DefaultLanguage]
}

var labels = map[Language]Labels{
	Portuguese: {
		Title:          "A Gaia Ciência",
		Subtitle:       "Scherz, List und Rache",
		Prelude:        "Prelúdio em rimas alemãs",
		Poems:          "Poemas",
		AskAI:          "Perguntar à IA",
		Export:         "Exportar",
		Copy:           "Copiar",
		Copied:         "Copiado!",
		ReadMore:       "Ler Poema",
		Back:           "Voltar",
		AIPlaceholder:  "Pergunte sobre o significado deste poema...",
		Loading:        "Pensando...",
		FooterQuote:    "Viver perigosamente. Construam suas cidades nas encostas do Vesúvio!",
		ChatTitle:      "Nietzsche AI",
		ChatIntro:      "Olá. Sou um eco digital de Friedrich Nietzsche. O que perturba teu espírito sobre estes versos?",
		ResponseCopied: "Reflexão copiada!",
		Audio: AudioLabels{
			Button:     "Resumo em Áudio",
			Generating: "Sintetizando Voz...",
			Download:   "Baixar Resumo",
			Listen:     "Ouvir Resumo",
			Title:      "Resumo Filosófico",
		},
		Art: ArtLabels{
			Title:       "Seu Brinde de Leitura",
			Subtitle:    "Transforme este poema em uma visão eterna.",
			SelectStyle: "Escolha o Estilo Artístico",
			Generate:    "Materializar Visão",
			Generating:  "Pintando o Abismo...",
			Download:    "Guardar Obra",
			Styles: map[string]string{
				"surrealism":     "Surrealismo Onírico",
				"expressionism":  "Expressionismo Alemão",
				"oil":            "Óleo Clássico Renascentista",
				"oil_expressive": "Pintura a Óleo Expressiva",
				"sketch":         "Esboço a Carvão",
				"cyberpunk":      "Futurismo Distópico",
			},
		},
		Infographic: InfographicLabels{
			Title:      "Mapa Visual de Conceitos",
			Subtitle:   "Um diagrama simbólico das ideias centrais do poema.",
			Generate:   "Gerar Infográfico",
			Button:     "Infográfico",
			Generating: "Estruturando Conceitos...",
			Download:   "Baixar Mapa",
			Note:       "Gera uma representação visual estruturada e simbólica.",
		},
		Categories: map[Category]string{
			All:              "Todos",
			Wisdom:           "Sabedoria Prática",
			LifeFate:         "Vida e Destino",
			ArtTruth:         "Arte e Verdade",
			MoralityCritique: "Crítica Moral",
		},
	},
	English: {
		Title:          "The Gay Science",
		Subtitle:       "Joke, Cunning and Revenge",
		Prelude:        "Prelude in German rhymes",
		Poems:          "Poems",
		AskAI:          "Ask AI",
		Export:         "Export",
		Copy:           "Copy",
		Copied:         "Copied!",
		ReadMore:       "Read Poem",
		Back:           "Back",
		AIPlaceholder:  "Ask about the meaning of this poem...",
		Loading:        "Thinking...",
		FooterQuote:    "Live dangerously. Build your cities on the slopes of Vesuvius!",
		ChatTitle:      "Nietzsche AI",
		ChatIntro:      "Hello. I am a digital echo of Friedrich Nietzsche. What troubles your spirit regarding these verses?",
		ResponseCopied: "Reflection copied!",
		Audio: AudioLabels{
			Button:     "Audio Summary",
			Generating: "Synthesizing Voice...",
			Download:   "Download Summary",
			Listen:     "Listen to Summary",
			Title:      "Philosophical Summary",
		},
		Art: ArtLabels{
			Title:       "Your Reading Gift",
			Subtitle:    "Transform this poem into an eternal vision.",
			SelectStyle: "Choose Art Style",
			Generate:    "Materialize Vision",
			Generating:  "Painting the Abyss...",
			Download:    "Keep Artwork",
			Styles: map[string]string{
				"surrealism":     "Dreamlike Surrealism",
				"expressionism":  "German Expressionism",
				"oil":            "Classic Renaissance Oil",
				"oil_expressive": "Expressive Oil Painting",
				"sketch":         "Charcoal Sketch",
				"cyberpunk":      "Dystopian Futurism",
			},
		},
		Infographic: InfographicLabels{
			Title:      "Visual Concept Map",
			Subtitle:   "A symbolic diagram of the poem's central ideas.",
			Generate:   "Generate Infographic",
			Button:     "Infographic",
			Generating: "Structuring Concepts...",
			Download:   "Download Map",
			Note:       "Generates a structured and symbolic visual representation.",
		},
		Categories: map[Category]string{
			All:              "All",
			Wisdom:           "Practical Wisdom",
			LifeFate:         "Life & Fate",
			ArtTruth:         "Art & Truth",
			MoralityCritique: "Moral Critique",
		},
	},
	Spanish: {
		Title:          "La Gaya Ciencia",
		Subtitle:       "Broma, Astucia y Venganza",
		Prelude:        "Preludio en rimas alemanas",
		Poems:          "Poemas",
		AskAI:          "Preguntar a la IA",
		Export:         "Exportar",
		Copy:           "Copiar",
		Copied:         "¡Copiado!",
		ReadMore:       "Leer Poema",
		Back:           "Volver",
		AIPlaceholder:  "Pregunta sobre el significado de este poema...",
		Loading:        "Pensando...",
		FooterQuote:    "¡Vivid peligrosamente! ¡Construid vuestras ciudades en las laderas del Vesubio!",
		ChatTitle:      "Nietzsche IA",
		ChatIntro:      "Hola. Soy un eco digital de Friedrich Nietzsche. ¿Qué perturba tu espíritu sobre estos versos?",
		ResponseCopied: "¡Reflexión copiada!",
		Audio: AudioLabels{
			Button:     "Resumen de Audio",
			Generating: "Sintetizando Voz...",
			Download:   "Descargar Resumen",
			Listen:     "Escuchar Resumen",
			Title:      "Resumen Filosófico",
		},
		Art: ArtLabels{
			Title:       "Tu Regalo de Lectura",
			Subtitle:    "Transforma este poema en una visión eterna.",
			SelectStyle: "Elige Estilo Artístico",
			Generate:    "Materializar Visión",
			Generating:  "Pintando el Abismo...",
			Download:    "Guardar Obra",
			Styles: map[string]string{
				"surrealism":     "Surrealismo Onírico",
				"expressionism":  "Expresionismo Alemán",
				"oil":            "Óleo Renacentista Clásico",
				"oil_expressive": "Pintura al Óleo Expresiva",
				"sketch":         "Boceto al Carbón",
				"cyberpunk":      "Futurismo Distópico",
			},
		},
		Infographic: InfographicLabels{
			Title:      "Mapa Visual de Conceptos",
			Subtitle:   "Un diagrama simbólico de las ideas centrales del poema.",
			Generate:   "Generar Infografía",
			Button:     "Infografía",
			Generating: "Estructurando Conceptos...",
			Download:   "Descargar Mapa",
			Note:       "Genera una representación visual estructurada y simbólica.",
		},
		Categories: map[Category]string{
			All:              "Todos",
			Wisdom:           "Sabiduría Práctica",
			LifeFate:         "Vida y Destino",
			ArtTruth:         "Arte y Verdad",
			MoralityCritique: "Crítica Moral",
		},
	},
}
