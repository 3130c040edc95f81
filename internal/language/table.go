package language

import (
	"sync"

	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

var plain = &Language{
	Tag:        PlainText,
	Name:       "text",
	IDs:        []string{"text", "plaintext", "markdown"},
	Extensions: []string{".txt", ".md", ".markdown"},
}

var cComments = []string{"comment"}

var jsDefinitions = []Definition{
	{"function_declaration", "name"},
	{"generator_function_declaration", "name"},
	{"function_expression", "name"},
	{"function", "name"},
	{"class_declaration", "name"},
	{"class", "name"},
	{"method_definition", "name"},
	{"variable_declarator", "name"},
	{"formal_parameters", ""},
	{"assignment_pattern", "left"},
	{"object_pattern", ""},
	{"array_pattern", ""},
	{"pair_pattern", "value"},
	{"arrow_function", "parameter"},
	{"catch_clause", "parameter"},
	{"field_definition", "property"},
	{"public_field_definition", "name"},
}

var tsDefinitions = append(append([]Definition{}, jsDefinitions...),
	Definition{"interface_declaration", "name"},
	Definition{"type_alias_declaration", "name"},
	Definition{"enum_declaration", "name"},
	Definition{"enum_body", ""},
	Definition{"enum_assignment", "name"},
	Definition{"abstract_class_declaration", "name"},
	Definition{"required_parameter", "pattern"},
	Definition{"optional_parameter", "pattern"},
	Definition{"property_signature", "name"},
	Definition{"method_signature", "name"},
	Definition{"abstract_method_signature", "name"},
	Definition{"type_parameter", "name"},
	Definition{"internal_module", "name"},
	Definition{"module", "name"},
)

var jsIdentifiers = []string{
	"identifier",
	"property_identifier",
	"private_property_identifier",
	"shorthand_property_identifier_pattern",
	"type_identifier",
}

var jsStringHoles = []string{"escape_sequence", "template_substitution", "\"", "'", "`"}

var cDefinitions = []Definition{
	{"function_declarator", "declarator"},
	{"init_declarator", "declarator"},
	{"declaration", "declarator"},
	{"parameter_declaration", "declarator"},
	{"pointer_declarator", "declarator"},
	{"array_declarator", "declarator"},
	{"field_declaration", "declarator"},
	{"type_definition", "declarator"},
	{"struct_specifier", "name"},
	{"union_specifier", "name"},
	{"enum_specifier", "name"},
	{"enumerator", "name"},
	{"preproc_def", "name"},
	{"preproc_function_def", "name"},
	{"preproc_params", ""},
}

var variants = []*Language{
	plain,
	{
		Tag:          Bash,
		Name:         "bash",
		IDs:          []string{"bash", "shellscript", "sh", "shell", "zsh"},
		Extensions:   []string{".sh", ".bash", ".zsh"},
		Dictionaries: []string{"bash"},
		Identifiers:  []string{"word", "variable_name"},
		Definitions: []Definition{
			{"function_definition", "name"},
			{"variable_assignment", "name"},
		},
		Comments:    cComments,
		Strings:     []string{"string", "raw_string", "heredoc_body"},
		StringHoles:   []string{"expansion", "simple_expansion", "command_substitution", "\"", "'"},
		OpaqueEscapes: true,
		grammar:       sync.OnceValue(bash.GetLanguage),
	},
	{
		Tag:          C,
		Name:         "c",
		IDs:          []string{"c"},
		Extensions:   []string{".c", ".h"},
		Dictionaries: []string{"c"},
		Identifiers:  []string{"identifier", "field_identifier", "type_identifier"},
		Definitions:  cDefinitions,
		Comments:     cComments,
		Strings:      []string{"string_literal"},
		StringHoles:  []string{"escape_sequence", "\""},
		Imports:      []string{"preproc_include"},
		grammar:      sync.OnceValue(c.GetLanguage),
	},
	{
		Tag:          CPP,
		Name:         "cpp",
		IDs:          []string{"cpp", "c++"},
		Extensions:   []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		Dictionaries: []string{"cpp", "c"},
		Identifiers:  []string{"identifier", "field_identifier", "type_identifier", "namespace_identifier"},
		Definitions: append(append([]Definition{}, cDefinitions...),
			Definition{"class_specifier", "name"},
			Definition{"namespace_definition", "name"},
			Definition{"alias_declaration", "name"},
			Definition{"optional_parameter_declaration", "declarator"},
			Definition{"reference_declarator", ""},
		),
		Comments:    cComments,
		Strings:     []string{"string_literal", "raw_string_literal"},
		StringHoles: []string{"escape_sequence", "raw_string_delimiter", "\""},
		Imports:     []string{"preproc_include", "using_declaration"},
		grammar:     sync.OnceValue(cpp.GetLanguage),
	},
	{
		Tag:          CSS,
		Name:         "css",
		IDs:          []string{"css"},
		Extensions:   []string{".css"},
		Dictionaries: []string{"css"},
		Identifiers:  []string{"class_name", "id_name", "keyframes_name", "identifier"},
		Definitions: []Definition{
			{"class_selector", ""},
			{"id_selector", ""},
			{"keyframes_statement", ""},
			{"class_name", ""},
		},
		Comments:    cComments,
		Strings:     []string{"string_value"},
		StringHoles: []string{"escape_sequence", "\"", "'"},
		Imports:     []string{"import_statement"},
		grammar:     sync.OnceValue(css.GetLanguage),
	},
	{
		Tag:          Go,
		Name:         "go",
		IDs:          []string{"go"},
		Extensions:   []string{".go"},
		Dictionaries: []string{"go"},
		Identifiers:  []string{"identifier", "field_identifier", "type_identifier", "package_identifier"},
		Containers:   []string{"expression_list"},
		Definitions: []Definition{
			{"function_declaration", "name"},
			{"method_declaration", "name"},
			{"type_spec", "name"},
			{"type_alias", "name"},
			{"var_spec", "name"},
			{"const_spec", "name"},
			{"short_var_declaration", "left"},
			{"range_clause", "left"},
			{"parameter_declaration", "name"},
			{"variadic_parameter_declaration", "name"},
			{"field_declaration", "name"},
			{"method_spec", "name"},
			{"method_elem", "name"},
			{"type_parameter_declaration", "name"},
			{"labeled_statement", "label"},
		},
		Comments:    cComments,
		Strings:     []string{"interpreted_string_literal", "raw_string_literal"},
		StringHoles: []string{"escape_sequence", "\"", "`"},
		Imports:     []string{"import_spec", "import_declaration"},
		grammar:     sync.OnceValue(golang.GetLanguage),
	},
	{
		Tag:          HTML,
		Name:         "html",
		IDs:          []string{"html"},
		Extensions:   []string{".html", ".htm"},
		Dictionaries: []string{"html"},
		Comments:     cComments,
		Strings:      []string{"quoted_attribute_value"},
		StringHoles:  []string{"\"", "'"},
		Text:         []string{"text"},
		grammar:      sync.OnceValue(html.GetLanguage),
	},
	{
		Tag:          Java,
		Name:         "java",
		IDs:          []string{"java"},
		Extensions:   []string{".java"},
		Dictionaries: []string{"java"},
		Identifiers:  []string{"identifier", "type_identifier"},
		Definitions: []Definition{
			{"class_declaration", "name"},
			{"interface_declaration", "name"},
			{"enum_declaration", "name"},
			{"record_declaration", "name"},
			{"annotation_type_declaration", "name"},
			{"method_declaration", "name"},
			{"constructor_declaration", "name"},
			{"variable_declarator", "name"},
			{"formal_parameter", "name"},
			{"catch_formal_parameter", "name"},
			{"enum_constant", "name"},
			{"type_parameter", ""},
		},
		Comments:    []string{"line_comment", "block_comment", "comment"},
		Strings:     []string{"string_literal"},
		StringHoles: []string{"escape_sequence", "\"", "\"\"\""},
		Imports:     []string{"import_declaration", "package_declaration"},
		grammar:     sync.OnceValue(java.GetLanguage),
	},
	{
		Tag:          JavaScript,
		Name:         "javascript",
		IDs:          []string{"javascript", "javascriptreact", "js", "jsx"},
		Extensions:   []string{".js", ".jsx", ".mjs", ".cjs"},
		Dictionaries: []string{"javascript"},
		Identifiers:  jsIdentifiers,
		Definitions:  jsDefinitions,
		Comments:     cComments,
		Strings:      []string{"string", "template_string"},
		StringHoles:  jsStringHoles,
		Text:         []string{"jsx_text"},
		Imports:      []string{"import_statement"},
		grammar:      sync.OnceValue(javascript.GetLanguage),
	},
	{
		Tag:          Lua,
		Name:         "lua",
		IDs:          []string{"lua"},
		Extensions:   []string{".lua"},
		Dictionaries: []string{"lua"},
		Identifiers:  []string{"identifier"},
		Containers:   []string{"variable_list", "name_list"},
		Definitions: []Definition{
			{"function_declaration", "name"},
			{"local_function_declaration", "name"},
			{"function_statement", "name"},
			{"local_function_statement", "name"},
			{"function_name", ""},
			{"local_variable_declaration", ""},
			{"variable_declaration", ""},
			{"parameters", ""},
		},
		Comments:    cComments,
		Strings:       []string{"string"},
		StringHoles:   []string{"escape_sequence", "\"", "'"},
		OpaqueEscapes: true,
		grammar:       sync.OnceValue(lua.GetLanguage),
	},
	{
		Tag:          PHP,
		Name:         "php",
		IDs:          []string{"php"},
		Extensions:   []string{".php"},
		Dictionaries: []string{"php"},
		Identifiers:  []string{"name"},
		Containers:   []string{"variable_name"},
		Definitions: []Definition{
			{"function_definition", "name"},
			{"method_declaration", "name"},
			{"class_declaration", "name"},
			{"interface_declaration", "name"},
			{"trait_declaration", "name"},
			{"enum_declaration", "name"},
			{"simple_parameter", "name"},
			{"property_element", ""},
			{"const_element", ""},
		},
		Comments:    cComments,
		Strings:     []string{"string", "encapsed_string"},
		StringHoles: []string{"escape_sequence", "variable_name", "\"", "'"},
		Text:        []string{"text"},
		Imports: []string{
			"namespace_use_declaration",
			"include_expression",
			"include_once_expression",
			"require_expression",
			"require_once_expression",
		},
		grammar: sync.OnceValue(php.GetLanguage),
	},
	{
		Tag:          Python,
		Name:         "python",
		IDs:          []string{"python", "py"},
		Extensions:   []string{".py", ".pyi"},
		Dictionaries: []string{"python"},
		Identifiers:  []string{"identifier"},
		Containers:   []string{"pattern_list", "tuple_pattern", "list_pattern", "list_splat_pattern", "dictionary_splat_pattern"},
		Definitions: []Definition{
			{"function_definition", "name"},
			{"class_definition", "name"},
			{"parameters", ""},
			{"lambda_parameters", ""},
			{"typed_parameter", ""},
			{"default_parameter", "name"},
			{"typed_default_parameter", "name"},
			{"assignment", "left"},
			{"for_statement", "left"},
			{"for_in_clause", "left"},
			{"as_pattern_target", ""},
			{"global_statement", ""},
		},
		Comments:    cComments,
		Strings:     []string{"string"},
		StringHoles: []string{"escape_sequence", "interpolation", "string_start", "string_end", "\""},
		Imports:     []string{"import_statement", "import_from_statement", "future_import_statement"},
		grammar:     sync.OnceValue(python.GetLanguage),
	},
	{
		Tag:          Ruby,
		Name:         "ruby",
		IDs:          []string{"ruby"},
		Extensions:   []string{".rb"},
		Dictionaries: []string{"ruby"},
		Identifiers:  []string{"identifier", "constant"},
		Definitions: []Definition{
			{"method", "name"},
			{"singleton_method", "name"},
			{"class", "name"},
			{"module", "name"},
			{"assignment", "left"},
			{"method_parameters", ""},
			{"block_parameters", ""},
			{"optional_parameter", "name"},
			{"keyword_parameter", "name"},
		},
		Comments:    cComments,
		Strings:     []string{"string", "heredoc_body"},
		StringHoles: []string{"escape_sequence", "interpolation", "\"", "'"},
		grammar:     sync.OnceValue(ruby.GetLanguage),
	},
	{
		Tag:          Rust,
		Name:         "rust",
		IDs:          []string{"rust"},
		Extensions:   []string{".rs"},
		Dictionaries: []string{"rust"},
		Identifiers:  []string{"identifier", "field_identifier", "type_identifier"},
		Containers:   []string{"tuple_pattern", "ref_pattern", "reference_pattern", "mut_pattern"},
		Definitions: []Definition{
			{"function_item", "name"},
			{"function_signature_item", "name"},
			{"struct_item", "name"},
			{"enum_item", "name"},
			{"enum_variant", "name"},
			{"union_item", "name"},
			{"trait_item", "name"},
			{"type_item", "name"},
			{"mod_item", "name"},
			{"const_item", "name"},
			{"static_item", "name"},
			{"macro_definition", "name"},
			{"let_declaration", "pattern"},
			{"parameter", "pattern"},
			{"closure_parameters", ""},
			{"for_expression", "pattern"},
			{"field_declaration", "name"},
			{"type_parameters", ""},
		},
		Comments:    []string{"line_comment", "block_comment"},
		Strings:     []string{"string_literal", "raw_string_literal"},
		StringHoles: []string{"escape_sequence", "\""},
		Imports:     []string{"use_declaration", "extern_crate_declaration"},
		grammar:     sync.OnceValue(rust.GetLanguage),
	},
	{
		Tag:          TOML,
		Name:         "toml",
		IDs:          []string{"toml"},
		Extensions:   []string{".toml"},
		Dictionaries: []string{"toml"},
		Identifiers:  []string{"bare_key"},
		Definitions: []Definition{
			{"pair", ""},
			{"dotted_key", ""},
			{"table", ""},
			{"table_array_element", ""},
		},
		Comments:    cComments,
		Strings:     []string{"string"},
		StringHoles: []string{"escape_sequence", "\"", "'", "\"\"\"", "'''"},
		grammar:     sync.OnceValue(toml.GetLanguage),
	},
	{
		Tag:          TSX,
		Name:         "typescriptreact",
		IDs:          []string{"typescriptreact", "tsx"},
		Extensions:   []string{".tsx"},
		Dictionaries: []string{"typescript", "javascript"},
		Identifiers:  jsIdentifiers,
		Definitions:  tsDefinitions,
		Comments:     cComments,
		Strings:      []string{"string", "template_string"},
		StringHoles:  jsStringHoles,
		Text:         []string{"jsx_text"},
		Imports:      []string{"import_statement"},
		grammar:      sync.OnceValue(tsx.GetLanguage),
	},
	{
		Tag:          TypeScript,
		Name:         "typescript",
		IDs:          []string{"typescript", "ts"},
		Extensions:   []string{".ts", ".mts", ".cts"},
		Dictionaries: []string{"typescript", "javascript"},
		Identifiers:  jsIdentifiers,
		Definitions:  tsDefinitions,
		Comments:     cComments,
		Strings:      []string{"string", "template_string"},
		StringHoles:  jsStringHoles,
		Imports:      []string{"import_statement"},
		grammar:      sync.OnceValue(typescript.GetLanguage),
	},
	{
		Tag:          YAML,
		Name:         "yaml",
		IDs:          []string{"yaml", "yml"},
		Extensions:   []string{".yaml", ".yml"},
		Dictionaries: []string{"yaml"},
		Comments:     cComments,
		Strings:      []string{"string_scalar", "double_quote_scalar", "single_quote_scalar", "block_scalar"},
		StringHoles:  []string{"escape_sequence", "\"", "'"},
		grammar:      sync.OnceValue(yaml.GetLanguage),
	},
}
