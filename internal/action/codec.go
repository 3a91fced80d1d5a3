package action

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The wire schema is the JSON contract between the intent router and the
// reasoning service: a required action_type plus one optional parameter
// sub-object per type. Unknown fields are ignored, not errors.

type envelope struct {
	Thinking   string `json:"thinking,omitempty"`
	ActionType string `json:"action_type"`
	Message    string `json:"message,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
	Content    string `json:"content,omitempty"`

	ScreenshotToCode *screenshotParams `json:"screenshot_to_code,omitempty"`
	DataStructuring  *structureParams  `json:"data_structuring,omitempty"`
	DebugCode        *debugParams      `json:"debug_code,omitempty"`
	Rewrite          *rewriteParams    `json:"rewrite,omitempty"`
	Translate        *translateParams  `json:"translate,omitempty"`
	Memory           *memoryParams     `json:"memory,omitempty"`
	ClipboardUtility *utilityParams    `json:"clipboard_utility,omitempty"`
}

type screenshotParams struct {
	Target        string `json:"target,omitempty"`
	ComponentName string `json:"component_name,omitempty"`
}

type structureParams struct {
	TargetFormat string `json:"target_format,omitempty"`
	SQLDialect   string `json:"sql_dialect,omitempty"`
}

type debugParams struct {
	Mode     string `json:"mode,omitempty"`
	Language string `json:"language,omitempty"`
}

type rewriteParams struct {
	Tone   string `json:"tone,omitempty"`
	Length string `json:"length,omitempty"`
}

type translateParams struct {
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

type memoryParams struct {
	Operation string `json:"operation,omitempty"`
	Query     string `json:"query,omitempty"`
	Label     string `json:"label,omitempty"`
	Category  string `json:"category,omitempty"`
}

type utilityParams struct {
	Operation string `json:"operation,omitempty"`
}

// Decode parses a raw reasoning-service response into a candidate command.
// A structurally broken payload or unrecognized action_type is a decode
// error; callers treat it as a validation failure, never a transport one.
func Decode(raw []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed action payload: %w", err)
	}
	return fromEnvelope(env)
}

func fromEnvelope(env envelope) (Command, error) {
	t := Type(strings.TrimSpace(env.ActionType))
	n := Notice{Message: env.Message, Emoji: env.Emoji}

	switch t {
	case TypeCopyText:
		return CopyText{Notice: n, Content: env.Content}, nil
	case TypeScreenshotToCode:
		cmd := ScreenshotToCode{Notice: n, Content: env.Content}
		if p := env.ScreenshotToCode; p != nil {
			cmd.Target = p.Target
			cmd.ComponentName = p.ComponentName
		}
		return cmd, nil
	case TypeStructureData:
		cmd := StructureData{Notice: n, Content: env.Content}
		if p := env.DataStructuring; p != nil {
			cmd.Format = p.TargetFormat
			cmd.SQLDialect = p.SQLDialect
		}
		return cmd, nil
	case TypeDebugCode:
		cmd := DebugCode{Notice: n, Content: env.Content}
		if p := env.DebugCode; p != nil {
			cmd.Mode = p.Mode
			cmd.Language = p.Language
		}
		return cmd, nil
	case TypeRewriteText:
		cmd := RewriteText{Notice: n, Content: env.Content}
		if p := env.Rewrite; p != nil {
			cmd.Tone = p.Tone
			cmd.Length = p.Length
		}
		return cmd, nil
	case TypeRemoveBackground:
		return RemoveBackground{Notice: n}, nil
	case TypeSaveMemory:
		cmd := SaveMemory{Notice: n}
		if p := env.Memory; p != nil {
			cmd.Label = p.Label
			cmd.Category = p.Category
		}
		return cmd, nil
	case TypeSearchMemory:
		cmd := SearchMemory{Notice: n}
		if p := env.Memory; p != nil {
			cmd.Query = p.Query
		}
		return cmd, nil
	case TypeDeleteMemory:
		cmd := DeleteMemory{Notice: n}
		if p := env.Memory; p != nil {
			cmd.Query = p.Query
		}
		return cmd, nil
	case TypeClearMemory:
		return ClearMemory{Notice: n}, nil
	case TypeClipboardUtility:
		cmd := ClipboardUtility{Notice: n}
		if p := env.ClipboardUtility; p != nil {
			cmd.Operation = p.Operation
		}
		return cmd, nil
	case TypeTranslate:
		cmd := Translate{Notice: n, Content: env.Content}
		if p := env.Translate; p != nil {
			cmd.SourceLanguage = p.SourceLanguage
			cmd.TargetLanguage = p.TargetLanguage
		}
		return cmd, nil
	case TypeCalculate:
		return Calculate{Notice: n, Content: env.Content}, nil
	case TypeShortReply:
		return ShortReply{Notice: n}, nil
	case TypeNoAction:
		return NoAction{Notice: n}, nil
	default:
		return nil, fmt.Errorf("unknown action_type %q", env.ActionType)
	}
}

// Encode serializes a command back to the wire schema. Decode(Encode(cmd))
// yields a field-for-field equal command for every action type.
func Encode(cmd Command) ([]byte, error) {
	n := cmd.Note()
	env := envelope{
		ActionType: string(cmd.Type()),
		Message:    n.Message,
		Emoji:      n.Emoji,
	}

	switch c := cmd.(type) {
	case CopyText:
		env.Content = c.Content
	case ScreenshotToCode:
		env.Content = c.Content
		if c.Target != "" || c.ComponentName != "" {
			env.ScreenshotToCode = &screenshotParams{Target: c.Target, ComponentName: c.ComponentName}
		}
	case StructureData:
		env.Content = c.Content
		if c.Format != "" || c.SQLDialect != "" {
			env.DataStructuring = &structureParams{TargetFormat: c.Format, SQLDialect: c.SQLDialect}
		}
	case DebugCode:
		env.Content = c.Content
		if c.Mode != "" || c.Language != "" {
			env.DebugCode = &debugParams{Mode: c.Mode, Language: c.Language}
		}
	case RewriteText:
		env.Content = c.Content
		if c.Tone != "" || c.Length != "" {
			env.Rewrite = &rewriteParams{Tone: c.Tone, Length: c.Length}
		}
	case RemoveBackground:
	case SaveMemory:
		if c.Label != "" || c.Category != "" {
			env.Memory = &memoryParams{Operation: "save", Label: c.Label, Category: c.Category}
		}
	case SearchMemory:
		if c.Query != "" {
			env.Memory = &memoryParams{Operation: "search", Query: c.Query}
		}
	case DeleteMemory:
		if c.Query != "" {
			env.Memory = &memoryParams{Operation: "delete", Query: c.Query}
		}
	case ClearMemory:
	case ClipboardUtility:
		if c.Operation != "" {
			env.ClipboardUtility = &utilityParams{Operation: c.Operation}
		}
	case Translate:
		env.Content = c.Content
		if c.SourceLanguage != "" || c.TargetLanguage != "" {
			env.Translate = &translateParams{SourceLanguage: c.SourceLanguage, TargetLanguage: c.TargetLanguage}
		}
	case Calculate:
		env.Content = c.Content
	case ShortReply:
	case NoAction:
	default:
		return nil, fmt.Errorf("unencodable command type %T", cmd)
	}

	return json.Marshal(env)
}
