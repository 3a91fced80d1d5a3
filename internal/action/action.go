// Package action defines the strictly-typed command vocabulary shared by the
// intent router, the schema validator and the executor. Commands form a
// sealed tagged variant: one concrete case per action type, each carrying
// only the fields relevant to that type.
package action

// Type enumerates every recognized action.
type Type string

const (
	TypeCopyText         Type = "COPY_TEXT"
	TypeScreenshotToCode Type = "SCREENSHOT_TO_CODE"
	TypeStructureData    Type = "STRUCTURE_DATA"
	TypeDebugCode        Type = "DEBUG_CODE"
	TypeRewriteText      Type = "REWRITE_TEXT"
	TypeRemoveBackground Type = "REMOVE_BACKGROUND"
	TypeSaveMemory       Type = "SAVE_MEMORY"
	TypeSearchMemory     Type = "SEARCH_MEMORY"
	TypeDeleteMemory     Type = "DELETE_MEMORY"
	TypeClearMemory      Type = "CLEAR_MEMORY"
	TypeClipboardUtility Type = "CLIPBOARD_UTILITY"
	TypeTranslate        Type = "TRANSLATE"
	TypeCalculate        Type = "CALCULATE"
	TypeShortReply       Type = "SHORT_REPLY"
	TypeNoAction         Type = "NO_ACTION"
)

// All lists every action type, in wire order.
func All() []Type {
	return []Type{
		TypeCopyText, TypeScreenshotToCode, TypeStructureData, TypeDebugCode,
		TypeRewriteText, TypeRemoveBackground, TypeSaveMemory, TypeSearchMemory,
		TypeDeleteMemory, TypeClearMemory, TypeClipboardUtility, TypeTranslate,
		TypeCalculate, TypeShortReply, TypeNoAction,
	}
}

// Known reports whether t is a recognized action type.
func Known(t Type) bool {
	for _, k := range All() {
		if k == t {
			return true
		}
	}
	return false
}

// Notice carries the user-facing notification fields every command shares.
// Embedding it satisfies the Command.Note accessor; the accessor cannot be
// named Notice because the embedded field would shadow the method.
type Notice struct {
	Message string
	Emoji   string
}

func (n Notice) Note() Notice { return n }

// Command is the sealed tagged variant. Only the types in this package
// implement it.
type Command interface {
	Type() Type
	Note() Notice
	sealed()
}

// CopyText replaces the clipboard with literal text produced by the router.
type CopyText struct {
	Notice
	Content string
}

// ScreenshotToCode converts a clipboard image into frontend code.
type ScreenshotToCode struct {
	Notice
	Target        string
	ComponentName string
	Content       string
}

// StructureData converts clipboard text into a structured format.
type StructureData struct {
	Notice
	Format     string
	SQLDialect string
	Content    string
}

// DebugCode fixes or explains clipboard code.
type DebugCode struct {
	Notice
	Mode     string
	Language string
	Content  string
}

// RewriteText polishes clipboard text in a given tone.
type RewriteText struct {
	Notice
	Tone    string
	Length  string
	Content string
}

// RemoveBackground strips the background from a clipboard image.
type RemoveBackground struct {
	Notice
}

// SaveMemory persists the clipboard text into the semantic store.
type SaveMemory struct {
	Notice
	Label    string
	Category string
}

// SearchMemory looks up previously saved content.
type SearchMemory struct {
	Notice
	Query string
}

// DeleteMemory removes the best match for a query from the store.
type DeleteMemory struct {
	Notice
	Query string
}

// ClearMemory wipes the semantic store.
type ClearMemory struct {
	Notice
}

// ClipboardUtility applies a deterministic text utility to the clipboard.
type ClipboardUtility struct {
	Notice
	Operation string
}

// Translate converts clipboard text to a target language.
type Translate struct {
	Notice
	SourceLanguage string
	TargetLanguage string
	Content        string
}

// Calculate carries a computed result to copy to the clipboard.
type Calculate struct {
	Notice
	Content string
}

// ShortReply surfaces a notification without touching the clipboard. It is
// also the safe fallback substituted by the validator.
type ShortReply struct {
	Notice
}

// NoAction is the terminal no-op, used for empty or unaddressed utterances.
type NoAction struct {
	Notice
}

func (CopyText) Type() Type         { return TypeCopyText }
func (ScreenshotToCode) Type() Type { return TypeScreenshotToCode }
func (StructureData) Type() Type    { return TypeStructureData }
func (DebugCode) Type() Type        { return TypeDebugCode }
func (RewriteText) Type() Type      { return TypeRewriteText }
func (RemoveBackground) Type() Type { return TypeRemoveBackground }
func (SaveMemory) Type() Type       { return TypeSaveMemory }
func (SearchMemory) Type() Type     { return TypeSearchMemory }
func (DeleteMemory) Type() Type     { return TypeDeleteMemory }
func (ClearMemory) Type() Type      { return TypeClearMemory }
func (ClipboardUtility) Type() Type { return TypeClipboardUtility }
func (Translate) Type() Type        { return TypeTranslate }
func (Calculate) Type() Type        { return TypeCalculate }
func (ShortReply) Type() Type       { return TypeShortReply }
func (NoAction) Type() Type         { return TypeNoAction }

func (CopyText) sealed()         {}
func (ScreenshotToCode) sealed() {}
func (StructureData) sealed()    {}
func (DebugCode) sealed()        {}
func (RewriteText) sealed()      {}
func (RemoveBackground) sealed() {}
func (SaveMemory) sealed()       {}
func (SearchMemory) sealed()     {}
func (DeleteMemory) sealed()     {}
func (ClearMemory) sealed()      {}
func (ClipboardUtility) sealed() {}
func (Translate) sealed()        {}
func (Calculate) sealed()        {}
func (ShortReply) sealed()       {}
func (NoAction) sealed()         {}

// Every case must satisfy Command.
var _ = []Command{
	CopyText{}, ScreenshotToCode{}, StructureData{}, DebugCode{}, RewriteText{},
	RemoveBackground{}, SaveMemory{}, SearchMemory{}, DeleteMemory{}, ClearMemory{},
	ClipboardUtility{}, Translate{}, Calculate{}, ShortReply{}, NoAction{},
}

// Fallback builds the well-formed SHORT_REPLY substituted whenever a
// candidate command cannot be validated.
func Fallback(reason string) ShortReply {
	if reason == "" {
		reason = "Could not handle that request"
	}
	return ShortReply{Notice: Notice{Message: reason, Emoji: "📋"}}
}
