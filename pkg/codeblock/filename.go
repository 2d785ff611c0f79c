package codeblock

import (
	"regexp"
	"strconv"
	"strings"
)

// maxStem bounds the descriptive part of a file name.
const maxStem = 30

// Phrases that introduce what a block does, in English and Spanish.
var contextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:funcion|función|function)\s+(?:para|que|to|that)\s+(\w+(?:\s+\w+){0,3})`),
	regexp.MustCompile(`(?i)(?:componente|component)\s+(?:de|para|que|for|that)\s+(\w+(?:\s+\w+){0,3})`),
	regexp.MustCompile(`(?i)(?:script|código|code)\s+(?:para|de|que|for|to|that)\s+(\w+(?:\s+\w+){0,3})`),
	regexp.MustCompile(`(?i)(?:implementación|implementacion|implementation)\s+(?:de|para|of|for)\s+(\w+(?:\s+\w+){0,3})`),
	regexp.MustCompile(`(?i)(?:crear|create|building)\s+(?:un|una|a|an)\s+(\w+(?:\s+\w+){0,3})`),
	regexp.MustCompile(`(?i)(?:aquí|aqui|here).+(?:para|de|for)\s+(\w+(?:\s+\w+){0,3})`),
}

// Declarations that name a block, keyed by language family.
var (
	jsDecl   = regexp.MustCompile(`function\s+(\w+)|class\s+(\w+)|const\s+(\w+)\s*=\s*[({]`)
	pyDecl   = regexp.MustCompile(`def\s+(\w+)|class\s+(\w+)`)
	cDecl    = regexp.MustCompile(`class\s+(\w+)|void\s+(\w+)|public\s+\w+\s+(\w+)`)
	goDecl   = regexp.MustCompile(`func\s+(?:\([^)]*\)\s*)?(\w+)|type\s+(\w+)`)
	htmlDecl = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
)

var declarations = map[string]*regexp.Regexp{
	"javascript": jsDecl, "js": jsDecl, "jsx": jsDecl,
	"typescript": jsDecl, "ts": jsDecl, "tsx": jsDecl,
	"python": pyDecl, "py": pyDecl,
	"java": cDecl, "c": cDecl, "cpp": cDecl, "csharp": cDecl, "cs": cDecl,
	"go": goDecl, "golang": goDecl,
	"html": htmlDecl, "markup": htmlDecl,
}

var genericStems = map[string]string{
	"js":   "javascript",
	"jsx":  "react_component",
	"ts":   "typescript",
	"tsx":  "react_tsx_component",
	"py":   "python_script",
	"java": "java_class",
	"cpp":  "cpp_program",
	"c":    "c_program",
	"cs":   "csharp_program",
	"html": "html_document",
	"css":  "stylesheet",
	"sql":  "database_query",
	"bash": "shell_script",
	"ruby": "ruby_script",
	"go":   "go_program",
	"rust": "rust_program",
	"json": "json_data",
}

var (
	nonWord = regexp.MustCompile(`[^\w\s]`)
	spaces  = regexp.MustCompile(`\s+`)
)

// Filename derives a descriptive file name for b.
//
// The stem comes from the first matching phrase in the block context, else
// from the first declaration in the code, sanitized to lowercase snake case
// of at most 30 characters. Without either, a generic stem for the language
// is used with seq appended to keep names apart.
func Filename(b Block, seq int) string {
	lang := strings.ToLower(b.Language)
	if lang == "" {
		lang = "text"
	}

	stem := sanitize(describe(b, lang))
	if stem == "" {
		generic, ok := genericStems[lang]
		if !ok {
			generic = "code_" + sanitize(lang)
		}
		stem = generic + "_" + strconv.Itoa(seq)
	}

	return stem + "." + Extension(b.Language)
}

func describe(b Block, lang string) string {
	if b.Context != "" {
		for _, p := range contextPatterns {
			if m := p.FindStringSubmatch(b.Context); m != nil && m[1] != "" {
				return m[1]
			}
		}
	}

	if re, ok := declarations[lang]; ok {
		if m := re.FindStringSubmatch(b.Code); m != nil {
			for _, g := range m[1:] {
				if g != "" {
					return g
				}
			}
		}
	}

	return ""
}

func sanitize(name string) string {
	name = strings.ToLower(name)
	name = nonWord.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	name = spaces.ReplaceAllString(name, "_")
	if len(name) > maxStem {
		name = name[:maxStem]
	}
	return name
}

var extensions = map[string]string{
	"javascript": "js",
	"js":         "js",
	"jsx":        "jsx",
	"typescript": "ts",
	"ts":         "ts",
	"tsx":        "tsx",
	"python":     "py",
	"py":         "py",
	"java":       "java",
	"cpp":        "cpp",
	"c":          "c",
	"csharp":     "cs",
	"cs":         "cs",
	"html":       "html",
	"css":        "css",
	"json":       "json",
	"bash":       "sh",
	"shell":      "sh",
	"sh":         "sh",
	"sql":        "sql",
	"ruby":       "rb",
	"go":         "go",
	"golang":     "go",
	"rust":       "rs",
	"yaml":       "yaml",
	"yml":        "yaml",
	"markdown":   "md",
	"md":         "md",
}

// Extension returns the file extension for a language, "txt" when unknown.
func Extension(language string) string {
	if ext, ok := extensions[strings.ToLower(language)]; ok {
		return ext
	}
	return "txt"
}

var displayNames = map[string]string{
	"js": "JavaScript", "javascript": "JavaScript",
	"jsx": "React JSX",
	"ts":  "TypeScript", "typescript": "TypeScript",
	"tsx": "React TSX",
	"py":  "Python", "python": "Python",
	"html": "HTML", "css": "CSS", "json": "JSON",
	"java": "Java", "cpp": "C++", "c": "C",
	"csharp": "C#", "cs": "C#",
	"bash": "Bash", "shell": "Shell", "sql": "SQL",
	"ruby": "Ruby", "go": "Go", "rust": "Rust",
	"plaintext": "Plain Text", "text": "Plain Text", "txt": "Plain Text",
}

// DisplayName returns a human readable language name.
func DisplayName(language string) string {
	if language == "" {
		return "Plain Text"
	}
	if name, ok := displayNames[strings.ToLower(language)]; ok {
		return name
	}
	return strings.ToUpper(language[:1]) + language[1:]
}
