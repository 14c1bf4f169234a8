package ui

// Strings holds every user-visible label that differs between languages.
type Strings struct {
	Title            string
	InputPlaceholder string
	Searching        string
	Placeholder      string
	EvidenceLabel    string
	NoMessages       string

	You       string
	Assistant string
	System    string

	SidebarTitle  string
	StorageLabel  string
	TopKLabel     string
	BackendLabel  string
	ModelLabel    string
	RerankLabel   string
	FormatLabel   string
	FormatPending string
	FormatYes     string
	FormatNo      string
	ModelIgnored  string

	Saved         string
	SaveFailed    string
	Copied        string
	CopyFailed    string
	NothingToYank string
	Cleared       string
	Busy          string

	SelectModel     string
	LoadingModels   string
	NoModels        string
	UseTyped        string
	SearchTitle     string
	SearchEmpty     string
	SearchNoMatches string
	HelpTitle       string
}

var jaStrings = Strings{
	Title:            "RAG Chat",
	InputPlaceholder: "質問を入力して Enter …",
	Searching:        "検索と生成中…",
	Placeholder:      "_（結果なし／失敗）_",
	EvidenceLabel:    "📎 根拠を見る（ヒットした断片）",
	NoMessages:       "コーパスへ質問してください。",

	You:       "あなた",
	Assistant: "アシスタント",
	System:    "システム",

	SidebarTitle:  "設定",
	StorageLabel:  "インデックス保存先",
	TopKLabel:     "Top-K",
	BackendLabel:  "LLM バックエンド",
	ModelLabel:    "LLM モデル名",
	RerankLabel:   "再ランク付け",
	FormatLabel:   "--format",
	FormatPending: "確認中…",
	FormatYes:     "対応（2 段階）",
	FormatNo:      "非対応（1 回）",
	ModelIgnored:  "（none では無視）",

	Saved:         "設定を保存しました",
	SaveFailed:    "設定の保存に失敗しました",
	Copied:        "コピーしました",
	CopyFailed:    "コピーに失敗しました",
	NothingToYank: "コピーする内容がありません",
	Cleared:       "会話をクリアしました",
	Busy:          "回答を待っています…",

	SelectModel:     "モデルを選択",
	LoadingModels:   "モデル一覧を取得中…",
	NoModels:        "モデルが見つかりません",
	UseTyped:        "入力した名前を使う",
	SearchTitle:     "🔍 会話を検索",
	SearchEmpty:     "入力すると会話を検索します…",
	SearchNoMatches: "一致なし",
	HelpTitle:       "RAG Chat - キー操作",
}

var enStrings = Strings{
	Title:            "RAG Chat",
	InputPlaceholder: "Ask the corpus and press Enter…",
	Searching:        "Searching and generating…",
	Placeholder:      "_(no result / failed)_",
	EvidenceLabel:    "📎 Evidence (matched fragments)",
	NoMessages:       "Ask the corpus a question.",

	You:       "You",
	Assistant: "Assistant",
	System:    "System",

	SidebarTitle:  "Settings",
	StorageLabel:  "Index storage",
	TopKLabel:     "Top-K",
	BackendLabel:  "LLM backend",
	ModelLabel:    "LLM model",
	RerankLabel:   "Rerank",
	FormatLabel:   "--format",
	FormatPending: "probing…",
	FormatYes:     "supported (two-phase)",
	FormatNo:      "unsupported (single run)",
	ModelIgnored:  "(ignored for none)",

	Saved:         "Settings saved",
	SaveFailed:    "Failed to save settings",
	Copied:        "Copied",
	CopyFailed:    "Copy failed",
	NothingToYank: "Nothing to copy",
	Cleared:       "Conversation cleared",
	Busy:          "Waiting for the answer…",

	SelectModel:     "Select Model",
	LoadingModels:   "Fetching models…",
	NoModels:        "No models available",
	UseTyped:        "Use typed name",
	SearchTitle:     "🔍 Search Conversation",
	SearchEmpty:     "Type to search the conversation...",
	SearchNoMatches: "No matches found",
	HelpTitle:       "RAG Chat - Keyboard Shortcuts",
}

// LocaleFor returns the strings for lang, Japanese unless lang is "en".
func LocaleFor(lang string) Strings {
	if lang == "en" {
		return enStrings
	}
	return jaStrings
}
