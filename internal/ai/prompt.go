// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"strings"
)

// SystemPrompt is the fixed system instruction for article generation.
const SystemPrompt = "Eres un experto redactor de contenido SEO."

// Section markers the model is instructed to emit. ParseArticle splits the
// raw completion on these.
const (
	markerTitle   = "[TÍTULO]"
	markerMeta    = "[META_DESCRIPCIÓN]"
	markerContent = "[CONTENIDO]"
)

// ErrEmptyBody is returned when a completion parses to an article with no
// body. Not retryable: the provider answered, it just answered uselessly.
var ErrEmptyBody = errors.New("ai: generated article has empty body")

// PromptParams collects everything that shapes the article prompt. The same
// params always render the same prompt.
type PromptParams struct {
	Keyword      string
	SearchVolume *int
	Difficulty   *float64
	Notes        *string
	Language     string
	Style        string
	MaxLength    int
}

// ArticlePrompt renders the SEO article prompt for a keyword. Optional
// keyword metrics are appended when present so the model can calibrate depth
// and angle.
func ArticlePrompt(p PromptParams) string {
	lang := p.Language
	if lang == "" {
		lang = "es"
	}
	style := p.Style
	if style == "" {
		style = "profesional"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Genera un artículo %s y optimizado para SEO sobre la palabra clave: %q

Idioma del contenido: %s

Requisitos específicos:
1. Título atractivo y optimizado para SEO (máximo 60 caracteres)
2. Contenido de al menos 1000 palabras, bien estructurado
3. Incluir la palabra clave de forma natural (densidad 1-2%%)
4. Meta descripción persuasiva de máximo 160 caracteres
5. Estructura jerárquica clara con subtítulos
6. Contenido original, informativo y de alta calidad
7. Incluir elementos que generen engagement (preguntas, datos, ejemplos)
8. OBLIGATORIO: Usar etiquetas HTML semánticas

Estructura requerida:
- Introducción que enganche al lector
- 3-5 secciones principales con <h2>
- Subsecciones con <h3> cuando sea necesario
- Listas para mejorar legibilidad
- Al menos una cita o dato relevante en <blockquote>
- Conclusión que invite a la acción

Etiquetas HTML OBLIGATORIAS:
- <h2> para títulos principales de sección
- <h3> para subtítulos de subsección
- <p> para cada párrafo (NUNCA texto suelto)
- <strong> para palabras clave y conceptos importantes
- <em> para énfasis y términos técnicos
- <ul><li> para listas de beneficios, características, etc.
- <ol><li> para procesos paso a paso
- <blockquote> para citas de expertos, estadísticas importantes

Tono y estilo:
- %s, pero accesible
- Directo y útil para el lector
- Incluir preguntas retóricas
- Usar ejemplos concretos
- Evitar jerga excesiva

Formato de respuesta EXACTO:
%s
Título aquí

%s
Meta descripción aquí

%s
Contenido completo aquí con etiquetas HTML semánticas`,
		style, p.Keyword, lang, style, markerTitle, markerMeta, markerContent)

	if p.SearchVolume != nil {
		fmt.Fprintf(&b, "\nVolumen de búsqueda: %d", *p.SearchVolume)
	}
	if p.Difficulty != nil {
		fmt.Fprintf(&b, "\nDificultad de palabra clave: %g", *p.Difficulty)
	}
	if p.Notes != nil && *p.Notes != "" {
		fmt.Fprintf(&b, "\nNotas adicionales: %s", *p.Notes)
	}
	return b.String()
}

// Article is a parsed generation result ready for storage.
type Article struct {
	Title           string
	MetaDescription string
	Body            string
}

// ParseArticle splits a raw completion on the section markers. When the
// markers are absent the whole text becomes the body and the first line
// serves as title if it is short enough. The body is truncated at maxLength
// characters (0 disables truncation). An empty body is an error.
func ParseArticle(raw string, maxLength int) (*Article, error) {
	a := &Article{}

	var (
		section      string
		contentLines []string
	)
	for _, line := range strings.Split(raw, "\n") {
		switch strings.TrimSpace(line) {
		case markerTitle:
			section = "title"
			continue
		case markerMeta:
			section = "meta"
			continue
		case markerContent:
			section = "content"
			continue
		}

		switch section {
		case "title":
			if s := strings.TrimSpace(line); s != "" && a.Title == "" {
				a.Title = s
			}
		case "meta":
			if s := strings.TrimSpace(line); s != "" && a.MetaDescription == "" {
				a.MetaDescription = s
			}
		case "content":
			// Preserve original formatting so HTML tags survive intact.
			contentLines = append(contentLines, line)
		}
	}
	a.Body = strings.TrimSpace(strings.Join(contentLines, "\n"))

	// Markers absent: treat the whole response as body, first line as title
	// when it looks like one.
	if a.Title == "" && a.Body == "" {
		a.Body = strings.TrimSpace(raw)
		first := strings.TrimSpace(strings.SplitN(raw, "\n", 2)[0])
		if len(first) > 0 && len(first) < 100 {
			a.Title = first
		}
	}

	if a.Body == "" {
		return nil, ErrEmptyBody
	}

	if maxLength > 0 {
		runes := []rune(a.Body)
		if len(runes) > maxLength {
			a.Body = string(runes[:maxLength])
		}
	}
	return a, nil
}
