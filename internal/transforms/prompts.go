package transforms

// Every transform asks the model for a single-field JSON object so the
// response parses the same way regardless of provider.
const outputSchemaNote = `Respond with a JSON object of exactly one field: {"output": "<the result>"}. No other fields, no markdown fences.`

const rewritePrompt = `Rewrite this text according to the instructions.

TONE: %s
LENGTH PREFERENCE: %s

RULES:
1. Output ONLY the rewritten text, no preamble
2. Preserve all factual information
3. For professional: formal, structured, grammar-perfect
4. For concise: cut 40-60%% of words without losing meaning
5. For friendly: warm, conversational, use contractions
6. For grammar_only: just fix errors, do not change tone
7. Never add information that was not in the original

ORIGINAL TEXT:
%s

` + outputSchemaNote

const structurePrompt = `Convert this data to %s format.

RULES:
1. Output ONLY the structured data, no explanations
2. Infer schema from the content (column names, data types)
3. Never truncate data
4. For CSV: include headers, use proper escaping
5. For JSON: use consistent keys, proper nesting
6. For SQL (%s): use INSERT statements
7. For Markdown: use proper table formatting

INPUT DATA:
%s

` + outputSchemaNote

const debugPrompt = `You are a code debugging expert. The user has provided code or an error trace.

MODE: %s

RULES:
1. For fix_only: return ONLY the corrected code, no explanations
2. For explain_only: return a brief explanation (3-6 lines max)
3. For fix_and_explain: return code first, then brief explanation
4. Preserve original variable names and logic intent
5. Output raw code, no markdown fences
6. If it is a stack trace, identify the error and provide the fix
7. Language hint (may be empty): %s

CODE/ERROR:
%s

` + outputSchemaNote

const translatePrompt = `Translate this text from %s to %s.

RULES:
1. Output ONLY the translation, no explanations
2. Preserve formatting (paragraphs, lists, etc.)
3. Maintain the original tone and style
4. For technical text, keep technical terms accurate
5. If the source language is "auto", detect it

TEXT TO TRANSLATE:
%s

` + outputSchemaNote

const screenshotPrompt = `Convert this UI screenshot to a pixel-perfect component.

TARGET FRAMEWORK: %s
COMPONENT NAME: %s

CRITICAL OUTPUT RULES:
1. Output the component EXACTLY ONCE, do not repeat or duplicate
2. The component MUST be named "%s" and exported as default
3. Do NOT use external icon libraries, use inline SVGs for all icons
4. Do NOT include background/container wrapping, just the component itself

VISUAL MATCHING:
- Match colors exactly (use Tailwind colors or custom hex like bg-[#E54865])
- Match border radius precisely (rounded-full, rounded-xl, etc.)
- Match shadows exactly (shadow-md, shadow-lg, etc.)

` + outputSchemaNote
