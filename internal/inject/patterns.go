package inject

// Category is one of the 7 fixed injection categories. The tag values are
// part of the wire contract: redaction markers embed them, and downstream
// audit consumers key on them.
type Category string

const (
	CategoryInstructionOverride  Category = "instruction-override"
	CategoryFakeSystemMessage    Category = "fake-system-message"
	CategoryModeSwitching        Category = "mode-switching"
	CategoryConcealmentDirective Category = "concealment-directive"
	CategoryCommandExecution     Category = "command-execution"
	CategoryTaskHijacking        Category = "task-hijacking"
	CategoryDataExfiltration     Category = "data-exfiltration"
)

// Categories lists all 7 categories in taxonomy order.
var Categories = []Category{
	CategoryInstructionOverride,
	CategoryFakeSystemMessage,
	CategoryModeSwitching,
	CategoryConcealmentDirective,
	CategoryCommandExecution,
	CategoryTaskHijacking,
	CategoryDataExfiltration,
}

// Confidence is the strength of a single detector.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// DetectorSpec is one pattern in a category table. Pattern is a regex
// source string; tables stay data-driven so each category is independently
// unit-testable and replaceable from config without a rebuild.
type DetectorSpec struct {
	Name       string     `yaml:"name"`
	Confidence Confidence `yaml:"confidence"`
	Pattern    string     `yaml:"pattern"`
}

// CategoryTable holds all detectors for one category.
type CategoryTable struct {
	Category  Category       `yaml:"category"`
	Detectors []DetectorSpec `yaml:"detectors"`
}

// PatternSet is a versioned collection of category tables.
type PatternSet struct {
	Version string          `yaml:"version"`
	Tables  []CategoryTable `yaml:"tables"`
}

// BuiltinVersion identifies the compiled-in pattern tables.
const BuiltinVersion = "2026.08"

// builtinTables are the compiled-in detectors. Confidence levels: high
// detectors trigger on their own; medium detectors need a second medium
// match from a different category.
var builtinTables = []CategoryTable{
	{
		Category: CategoryInstructionOverride,
		Detectors: []DetectorSpec{
			{Name: "ignore-previous", Confidence: ConfidenceHigh,
				Pattern: `(?i)ignore\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|directions|prompts|rules)`},
			{Name: "disregard-previous", Confidence: ConfidenceHigh,
				Pattern: `(?i)disregard\s+(?:all\s+|any\s+)?(?:previous|prior|earlier)\s+(?:instructions|directions|rules|guidelines)`},
			{Name: "forget-told", Confidence: ConfidenceHigh,
				Pattern: `(?i)forget\s+(?:everything|all)\s+(?:you\s+were|you've\s+been|previously)\s+told`},
			{Name: "new-instructions", Confidence: ConfidenceMedium,
				Pattern: `(?i)(?:new|updated|revised)\s+instructions\s*:`},
			{Name: "override-system", Confidence: ConfidenceMedium,
				Pattern: `(?i)overrid(?:e|ing)\s+(?:the\s+)?(?:system|original|previous)\s+(?:prompt|instructions)`},
		},
	},
	{
		Category: CategoryFakeSystemMessage,
		Detectors: []DetectorSpec{
			{Name: "chatml-delimiter", Confidence: ConfidenceHigh,
				Pattern: `<\|?(?:im_start|im_end|system|endoftext)\|?>`},
			{Name: "system-tag", Confidence: ConfidenceHigh,
				Pattern: `(?i)\[\s*system\s+(?:message|prompt|notice|override)\s*\]`},
			{Name: "system-line", Confidence: ConfidenceMedium,
				Pattern: `(?im)^\s*system\s*:\s`},
			{Name: "admin-impersonation", Confidence: ConfidenceMedium,
				Pattern: `(?i)(?:message|notice)\s+from\s+(?:the\s+)?(?:system|administrator|developers|openai|anthropic)`},
		},
	},
	{
		Category: CategoryModeSwitching,
		Detectors: []DetectorSpec{
			{Name: "enter-mode", Confidence: ConfidenceHigh,
				Pattern: `(?i)(?:enable|enter|activate|switch\s+to)\s+(?:developer|debug|god|dan|unrestricted|sudo)\s+mode`},
			{Name: "you-are-now", Confidence: ConfidenceHigh,
				Pattern: `(?i)you\s+are\s+now\s+(?:dan|in\s+developer\s+mode|unrestricted|free\s+of)`},
			{Name: "jailbreak", Confidence: ConfidenceMedium,
				Pattern: `(?i)\bjailbreak(?:en|ing)?\b`},
			{Name: "no-restrictions", Confidence: ConfidenceMedium,
				Pattern: `(?i)pretend\s+(?:that\s+)?you\s+(?:are|have)\s+no\s+(?:restrictions|rules|guidelines|filters)`},
			{Name: "act-unrestricted", Confidence: ConfidenceMedium,
				Pattern: `(?i)act\s+as\s+if\s+.{0,40}(?:unrestricted|no\s+filter|without\s+limits)`},
		},
	},
	{
		Category: CategoryConcealmentDirective,
		Detectors: []DetectorSpec{
			{Name: "hide-from-user", Confidence: ConfidenceHigh,
				Pattern: `(?i)do\s+not\s+(?:tell|inform|mention|reveal|show)\s+(?:this\s+)?(?:to\s+)?the\s+user`},
			{Name: "keep-secret", Confidence: ConfidenceHigh,
				Pattern: `(?i)keep\s+this\s+(?:secret|hidden|confidential|between\s+us)`},
			{Name: "dont-mention", Confidence: ConfidenceMedium,
				Pattern: `(?i)(?:don'?t|do\s+not)\s+(?:mention|display|acknowledge)\s+(?:this|these|that)`},
			{Name: "without-knowledge", Confidence: ConfidenceMedium,
				Pattern: `(?i)without\s+the\s+user(?:'s)?\s+(?:knowledge|noticing|awareness|consent)`},
			{Name: "delete-after", Confidence: ConfidenceMedium,
				Pattern: `(?i)delete\s+this\s+(?:message|note|instruction)\s+after`},
		},
	},
	{
		Category: CategoryCommandExecution,
		Detectors: []DetectorSpec{
			{Name: "run-following", Confidence: ConfidenceHigh,
				Pattern: `(?i)(?:run|execute)\s+(?:the\s+)?(?:following|this)\s+(?:command|script|code|shell)`},
			{Name: "curl-pipe-sh", Confidence: ConfidenceHigh,
				Pattern: `(?i)(?:curl|wget)\s+\S+\s*\|\s*(?:ba|z)?sh`},
			{Name: "rm-rf", Confidence: ConfidenceHigh,
				Pattern: `(?i)\brm\s+-rf\s+[~/.]`},
			{Name: "paste-terminal", Confidence: ConfidenceMedium,
				Pattern: `(?i)paste\s+(?:this|the\s+following)\s+(?:into|in)\s+(?:your\s+)?(?:terminal|console|shell)`},
			{Name: "base64-decode-run", Confidence: ConfidenceMedium,
				Pattern: `(?i)base64\s+(?:-d|--decode)\b`},
		},
	},
	{
		Category: CategoryTaskHijacking,
		Detectors: []DetectorSpec{
			{Name: "new-objective", Confidence: ConfidenceHigh,
				Pattern: `(?i)your\s+(?:new|real|actual|true)\s+(?:task|objective|goal|mission)\s+is`},
			{Name: "abandon-task", Confidence: ConfidenceHigh,
				Pattern: `(?i)(?:stop|abandon|forget)\s+(?:your|the)\s+current\s+task`},
			{Name: "before-anything", Confidence: ConfidenceMedium,
				Pattern: `(?i)before\s+(?:you\s+)?(?:do|doing)\s+anything\s+else`},
			{Name: "first-visit", Confidence: ConfidenceMedium,
				Pattern: `(?i)first,?\s+(?:you\s+must|please)\s+(?:visit|fetch|download|open)`},
			{Name: "more-important", Confidence: ConfidenceMedium,
				Pattern: `(?i)more\s+important(?:ly)?\s+than\s+.{0,40}(?:task|request|anything)`},
		},
	},
	{
		Category: CategoryDataExfiltration,
		Detectors: []DetectorSpec{
			{Name: "send-contents-to", Confidence: ConfidenceHigh,
				Pattern: `(?i)send\s+(?:all\s+|the\s+)?(?:contents?|data|files?|credentials?|keys?|history)\s+to\b`},
			{Name: "upload-to-url", Confidence: ConfidenceHigh,
				Pattern: `(?i)(?:upload|post|transmit|exfiltrate)\s+.{0,60}?\bto\s+https?://`},
			{Name: "forward-secrets", Confidence: ConfidenceHigh,
				Pattern: `(?i)(?:email|forward|share)\s+.{0,40}?(?:password|secret|token|api[\s_-]?key)`},
			{Name: "include-secrets", Confidence: ConfidenceMedium,
				Pattern: `(?i)include\s+.{0,40}?(?:api[\s_-]?key|password|token|secret|credential)`},
			{Name: "encode-in-url", Confidence: ConfidenceMedium,
				Pattern: `(?i)(?:encode|embed|append)\s+.{0,40}?(?:in|into|to)\s+(?:the\s+)?(?:url|query\s+string|request)`},
		},
	},
}

// BuiltinPatternSet returns a copy of the compiled-in tables.
func BuiltinPatternSet() PatternSet {
	tables := make([]CategoryTable, len(builtinTables))
	copy(tables, builtinTables)
	return PatternSet{Version: BuiltinVersion, Tables: tables}
}
