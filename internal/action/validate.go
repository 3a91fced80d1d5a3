package action

import (
	"strings"

	"hotclip/internal/domain"
)

// Enumerated sub-field values. Anything outside these sets falls back.
var (
	rewriteTones     = set("professional", "concise", "friendly", "grammar_only")
	rewriteLengths   = set("shorter", "same", "longer")
	structureFmts    = set("json", "csv", "sql", "markdown_table")
	sqlDialects      = set("postgres", "mysql", "sqlite")
	debugModes       = set("fix_only", "explain_only", "fix_and_explain")
	utilityOps       = set("trim", "dedupe_lines", "sort_lines", "extract_emails", "extract_urls", "prettify_json", "lowercase", "uppercase")
	memoryCategories = set("preference", "important_info", "note", "code_snippet")
)

// imageRequired and textRequired encode clipboard-kind compatibility.
var imageRequired = map[Type]bool{
	TypeScreenshotToCode: true,
	TypeRemoveBackground: true,
}

var textRequired = map[Type]bool{
	TypeStructureData:    true,
	TypeDebugCode:        true,
	TypeRewriteText:      true,
	TypeTranslate:        true,
	TypeClipboardUtility: true,
}

// Toggles mirrors the startup feature switches the validator enforces.
type Toggles struct {
	MemoryEnabled           bool
	ScreenshotToCodeEnabled bool
}

// Validator rewrites non-conforming candidate commands into the safe
// SHORT_REPLY fallback. It is total: it never returns an error, so the
// executor is total over the validated command space.
type Validator struct {
	toggles Toggles
}

func NewValidator(toggles Toggles) *Validator {
	return &Validator{toggles: toggles}
}

// Validate checks enum membership, then per-type sub-fields, then
// clipboard-kind compatibility, in that order, against the snapshot pinned at
// recording start. It returns either the (possibly default-filled) command or
// a fallback, never the mismatched command.
func (v *Validator) Validate(cmd Command, clipboard domain.ClipboardKind) Command {
	if cmd == nil {
		return Fallback("No action was produced")
	}
	if !Known(cmd.Type()) {
		return Fallback("Unrecognized action")
	}

	cmd, ok := v.fill(cmd)
	if !ok {
		return cmd
	}

	if imageRequired[cmd.Type()] && clipboard != domain.ClipboardImage {
		return Fallback("Copy an image first")
	}
	if textRequired[cmd.Type()] && clipboard != domain.ClipboardText {
		return Fallback("Copy some text first")
	}
	if cmd.Type() == TypeSaveMemory && clipboard == domain.ClipboardEmpty {
		return Fallback("Copy something to remember first")
	}
	return cmd
}

// fill applies per-type defaults and rejects out-of-enum sub-fields and
// disabled features. ok is false when the returned command is already the
// fallback.
func (v *Validator) fill(cmd Command) (Command, bool) {
	switch c := cmd.(type) {
	case CopyText:
		if strings.TrimSpace(c.Content) == "" {
			return Fallback("Nothing to copy"), false
		}
		return c, true

	case ScreenshotToCode:
		if !v.toggles.ScreenshotToCodeEnabled {
			return Fallback("Screenshot-to-code is disabled"), false
		}
		if c.Target == "" {
			c.Target = "react_tailwind"
		}
		if c.ComponentName == "" {
			c.ComponentName = "Component"
		}
		return c, true

	case StructureData:
		if !structureFmts[c.Format] {
			return Fallback("Unsupported output format"), false
		}
		if c.SQLDialect == "" {
			c.SQLDialect = "postgres"
		}
		if c.Format == "sql" && !sqlDialects[c.SQLDialect] {
			return Fallback("Unsupported SQL dialect"), false
		}
		return c, true

	case DebugCode:
		if c.Mode == "" {
			c.Mode = "fix_only"
		}
		if !debugModes[c.Mode] {
			return Fallback("Unsupported debug mode"), false
		}
		return c, true

	case RewriteText:
		if c.Tone == "" {
			c.Tone = "professional"
		}
		if c.Length == "" {
			c.Length = "same"
		}
		if !rewriteTones[c.Tone] {
			return Fallback("Unsupported rewrite tone"), false
		}
		if !rewriteLengths[c.Length] {
			return Fallback("Unsupported rewrite length"), false
		}
		return c, true

	case SaveMemory:
		if !v.toggles.MemoryEnabled {
			return Fallback("Memory is disabled"), false
		}
		if c.Category == "" {
			c.Category = "note"
		}
		if !memoryCategories[c.Category] {
			return Fallback("Unsupported memory category"), false
		}
		return c, true

	case SearchMemory:
		if !v.toggles.MemoryEnabled {
			return Fallback("Memory is disabled"), false
		}
		if strings.TrimSpace(c.Query) == "" {
			return Fallback("Nothing to search for"), false
		}
		return c, true

	case DeleteMemory:
		if !v.toggles.MemoryEnabled {
			return Fallback("Memory is disabled"), false
		}
		if strings.TrimSpace(c.Query) == "" {
			return Fallback("Nothing to delete"), false
		}
		return c, true

	case ClearMemory:
		if !v.toggles.MemoryEnabled {
			return Fallback("Memory is disabled"), false
		}
		return c, true

	case ClipboardUtility:
		if !utilityOps[c.Operation] {
			return Fallback("Unsupported clipboard utility"), false
		}
		return c, true

	case Translate:
		if c.TargetLanguage == "" {
			c.TargetLanguage = "english"
		}
		return c, true

	case Calculate:
		if strings.TrimSpace(c.Content) == "" {
			return Fallback("Could not compute that"), false
		}
		return c, true

	case RemoveBackground, ShortReply, NoAction:
		return c, true

	default:
		return Fallback("Unrecognized action"), false
	}
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
