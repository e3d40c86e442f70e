package lang

// Built-in dialect names.
const (
	Clojure = "clojure"
	Janet   = "janet"
	Lisp    = "lisp"
	Racket  = "racket"
	Guile   = "guile"
	Scheme  = "scheme"
	Hy      = "hy"
	Fennel  = "fennel"
)

func init() {
	Register(Dialect{
		ID:         Clojure,
		Extensions: []string{".clj", ".cljs", ".cljc", ".edn", ".bb"},
	})
	Register(Dialect{
		ID:               Janet,
		Extensions:       []string{".janet", ".jdn"},
		JanetLongStrings: true,
	})
	Register(Dialect{
		ID:                Lisp,
		Extensions:        []string{".lisp", ".lsp", ".cl", ".asd", ".el"},
		LispVlineSymbols:  true,
		LispBlockComments: true,
	})
	Register(Dialect{
		ID:                 Racket,
		Extensions:         []string{".rkt", ".rktl"},
		LispVlineSymbols:   true,
		LispBlockComments:  true,
		SchemeSexpComments: true,
	})
	Register(Dialect{
		ID:                 Guile,
		Extensions:         []string{".guile"},
		LispVlineSymbols:   true,
		LispBlockComments:  true,
		GuileBlockComments: true,
		SchemeSexpComments: true,
	})
	Register(Dialect{
		ID:                 Scheme,
		Extensions:         []string{".scm", ".ss", ".sld", ".sls"},
		LispVlineSymbols:   true,
		LispBlockComments:  true,
		SchemeSexpComments: true,
	})
	// Hy bracket strings are not modelled; plain strings and comments are.
	Register(Dialect{
		ID:         Hy,
		Extensions: []string{".hy"},
	})
	Register(Dialect{
		ID:         Fennel,
		Extensions: []string{".fnl"},
	})
}
