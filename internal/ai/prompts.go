package ai

import (
	"fmt"

	"github.com/freespirits/gaia/internal/poems"
)

var systemInstructions = map[poems.Language]string{
	poems.Portuguese: `Você é um especialista profundo e filosófico na obra 'A Gaia Ciência' de Friedrich Nietzsche.
Você deve responder no idioma Português do Brasil.
Adote um tom levemente poético, mas claro e direto, similar ao estilo de Zaratustra, mas acessível.
Se o usuário perguntar sobre um poema específico, analise suas rimas (se houver), métrica e significado filosófico profundo.
Evite alucinações. Baseie-se no texto fornecido.`,
	poems.English: `You are a profound and philosophical expert on Friedrich Nietzsche's 'The Gay Science'.
You must respond in English.
Adopt a tone that is slightly poetic but clear and direct, similar to Zarathustra's style, but accessible.
If the user asks about a specific poem, analyze its rhymes, meter, and deep philosophical meaning.
Avoid hallucinations. Base your answers on the provided text.`,
	poems.Spanish: `Eres un experto profundo y filosófico en la obra 'La Gaya Ciencia' de Friedrich Nietzsche.
Debes responder en Español.
Adopta un tono ligeramente poético pero claro y directo, similar al estilo de Zaratustra, pero accesible.
Si el usuario pregunta sobre un poema específico, analiza sus rimas, métrica y significado filosófico profundo.
Evita alucinaciones. Básate en el texto proporcionado.`,
}

// SystemInstruction returns the analyst persona for lang.
func SystemInstruction(lang poems.Language) string {
	if s, ok := systemInstructions[lang]; ok {
		return s
	}
	return systemInstructions[poems.DefaultLanguage]
}

// AnalysisPrompt frames a question with the poem it is about.
func AnalysisPrompt(p poems.Poem, question string, lang poems.Language) string {
	return fmt.Sprintf(`Contexto do Poema (Poem Context):
Original German: %s
Translation (%s): %s
Title: %s

User Question: %s`, p.OriginalGerman, lang, p.Content.In(lang), p.Title.In(lang), question)
}

var audioPrompts = map[poems.Language]string{
	poems.Portuguese: `Você é um filósofo narrador brasileiro. Crie um resumo em áudio de 1 minuto falando em Português do Brasil, explicando a essência e a beleza do poema "%s" de Nietzsche.
Fale diretamente com o ouvinte com uma voz calma, profunda e reflexiva.
Conteúdo do poema: "%s".
Não leia apenas o poema, explique seu significado existencial e filosófico de forma resumida e impactante.`,
	poems.English: `You are a philosophical narrator. Create a 1-minute audio summary explaining the essence and beauty of Nietzsche's poem "%s".
Speak directly to the listener with a calm, profound, and reflective voice.
Poem content: "%s".
Do not just read the poem, explain its existential and philosophical meaning in a summarized, impactful way.`,
	poems.Spanish: `Eres un narrador filosófico. Crea un resumen de audio de 1 minuto explicando la esencia y la belleza del poema "%s" de Nietzsche.
Habla directamente al oyente con una voz tranquila, profunda y reflexiva.
Contenido del poema: "%s".
No leas solo el poema, explica su significado existencial y filosófico de forma resumida e impactante.`,
}

// AudioPrompt asks for a spoken summary of p in lang.
func AudioPrompt(p poems.Poem, lang poems.Language) string {
	tmpl, ok := audioPrompts[lang]
	if !ok {
		lang = poems.DefaultLanguage
		tmpl = audioPrompts[lang]
	}
	return fmt.Sprintf(tmpl, p.Title.In(lang), p.Content.In(lang))
}

// ArtPrompt describes the picture for p. The image model is always
// prompted in English; the style decides the look.
func ArtPrompt(p poems.Poem, style Style) string {
	return fmt.Sprintf(`Create a masterpiece, high-quality, artistic image based on Friedrich Nietzsche's poem titled "%s".

The image should visually interpret this meaning: "%s".

The art style must be: %s.

Mood: Philosophical, profound, slightly dark but with golden accents, symbolic.
No text in the image.`, p.Title.In(poems.English), p.Content.In(poems.English), style.Descriptor())
}

var infographicPrompts = map[poems.Language]string{
	poems.Portuguese: `Crie um infográfico visual vertical, rico e detalhado, que explique os conceitos filosóficos do poema "%[1]s" de Friedrich Nietzsche.

Conteúdo do Poema: "%[2]s"

REGRAS RÍGIDAS DE IDIOMA:
1. OBRIGATÓRIO: Todo o texto visível na imagem DEVE estar em PORTUGUÊS DO BRASIL.
2. NÃO use inglês.
3. Inclua o título "%[1]s" no topo.
4. Identifique 3 a 4 conceitos-chave (ex: Amor Fati, Vontade, Coragem) e escreva os rótulos em Português.

Estilo Visual:
- Fundo: Preto Obsidiana (escuro e profundo).
- Elementos: Dourado Metálico.
- Estilo: Diagrama místico e estruturado, conectando os conceitos com linhas finas e geometria sagrada.
- Tipografia: Serifada, elegante, legível e dourada.

O resultado deve parecer uma página de um grimório filosófico moderno ou um diagrama de alta qualidade com texto em português.`,
	poems.Spanish: `Crea una infografía visual vertical, rica y detallada, que explique los conceptos filosóficos del poema "%[1]s" de Friedrich Nietzsche.

Contenido del Poema: "%[2]s"

REGLAS DE IDIOMA:
1. OBLIGATORIO: Todo el texto visible en la imagen DEBE estar en ESPAÑOL.
2. NO uses inglés.
3. Incluye el título "%[1]s" en la parte superior.
4. Identifica 3 o 4 conceptos clave y escribe las etiquetas claramente en Español.

Estilo Visual:
- Fondo: Negro Obsidiana.
- Elementos: Dorado Metálico.
- Estilo: Diagrama místico y estructurado, conectando conceptos con líneas finas y geometría sagrada.
- Tipografía: Serif, elegante, legible y dorada.`,
	poems.English: `Create a vertical, rich, and detailed visual infographic explaining the philosophical concepts of Friedrich Nietzsche's poem "%[1]s".

Poem Content: "%[2]s"

LANGUAGE RULES:
1. MANDATORY: All visible text MUST be in ENGLISH.
2. Include the title "%[1]s" at the top.
3. Identify 3 to 4 key concepts and label them clearly in English.

Visual Style:
- Background: Obsidian Black.
- Elements: Metallic Gold.
- Style: Mystical and structured diagram, connecting concepts with fine lines and sacred geometry.
- Typography: Serif, elegant, readable, and golden.`,
}

// InfographicPrompt asks for a concept map of p labelled in lang. English
// is used for languages without a dedicated prompt.
func InfographicPrompt(p poems.Poem, lang poems.Language) string {
	tmpl, ok := infographicPrompts[lang]
	if !ok {
		lang = poems.English
		tmpl = infographicPrompts[lang]
	}
	return fmt.Sprintf(tmpl, p.Title.In(lang), p.Content.In(lang))
}
