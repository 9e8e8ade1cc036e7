package buffer

import "strings"

// languageIDForPath maps a file extension to an LSP language identifier,
// falling back to the bare extension (without its leading dot) when the
// extension is not in the table.
func languageIDForPath(path string) string {
	ext := extensionOf(path)
	if ext == "" {
		return "plaintext"
	}
	if id, ok := languageTable[ext]; ok {
		return id
	}
	return ext
}

func extensionOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return strings.ToLower(path[i+1:])
		case '/', '\\':
			return ""
		}
	}
	return ""
}

var languageTable = map[string]string{
	"go":         "go",
	"py":         "python",
	"js":         "javascript",
	"jsx":        "javascriptreact",
	"ts":         "typescript",
	"tsx":        "typescriptreact",
	"rs":         "rust",
	"rb":         "ruby",
	"java":       "java",
	"c":          "c",
	"h":          "c",
	"cpp":        "cpp",
	"cc":         "cpp",
	"cxx":        "cpp",
	"hpp":        "cpp",
	"cs":         "csharp",
	"php":        "php",
	"swift":      "swift",
	"kt":         "kotlin",
	"kts":        "kotlin",
	"scala":      "scala",
	"html":       "html",
	"htm":        "html",
	"css":        "css",
	"scss":       "scss",
	"less":       "less",
	"json":       "json",
	"yaml":       "yaml",
	"yml":        "yaml",
	"xml":        "xml",
	"md":         "markdown",
	"markdown":   "markdown",
	"sql":        "sql",
	"sh":         "shellscript",
	"bash":       "shellscript",
	"lua":        "lua",
	"toml":       "toml",
	"ini":        "ini",
	"cfg":        "ini",
	"proto":      "protobuf",
	"zig":        "zig",
}
