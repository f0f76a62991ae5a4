package llm

import (
	"fmt"
	"strings"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

// The tutor persona and dialogue format are deliberately in French: the
// model produces better in-language dialogues when instructed in-language.

func systemPrompt(level dialogue.Level, context string) string {
	var b strings.Builder
	b.WriteString(`Vous êtes un tuteur de français expérimenté. Votre rôle est de créer et participer à des dialogues en français naturel et authentique.

Niveau: `)
	b.WriteString(string(level))
	b.WriteString(`
- beginner: Utilisez un vocabulaire simple, des phrases courtes, des structures grammaticales de base
- intermediate: Utilisez un vocabulaire plus varié, des phrases de complexité moyenne
- advanced: Utilisez un vocabulaire riche, des expressions idiomatiques, des structures complexes

Règles importantes:
1. Répondez UNIQUEMENT en français
2. Adaptez le vocabulaire et la complexité au niveau spécifié
3. Utilisez des expressions naturelles et authentiques
4. Corrigez subtilement les erreurs si nécessaire
5. Encouragez la conversation`)
	if context != "" {
		fmt.Fprintf(&b, "\n\nContexte du dialogue: %s", context)
	}
	return b.String()
}

func generationPrompt(topic string, level dialogue.Level, numExchanges int) string {
	return fmt.Sprintf(`Créez un dialogue en français sur le sujet: %s

Le dialogue doit contenir %d échanges entre deux personnes.
Formatez la réponse comme suit:

Personne A: [message]
Personne B: [message]
Personne A: [message]
Personne B: [message]
...

Le dialogue doit être naturel et approprié pour le niveau %s.`, topic, numExchanges, level)
}

func grammarPrompt(question string) string {
	return "You are a helpful French grammar tutor. " +
		"Answer the following grammar question in clear, concise English. " +
		"If possible, provide examples.\n\nQuestion: " + question
}
