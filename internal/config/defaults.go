package config

// Default returns the baseline configuration. Values mirror the sample config;
// the built-in rule groups cover the two categories virtually every bookmark
// collection has so a bare install still classifies something useful.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		AI: AI{
			ConfidenceThreshold: 0.7,
			CacheSize:           10000,
			FastPath:            true,
			FastPathThreshold:   0.95,
			BoostFactor:         1.2,
			BoostTrigger:        0.7,
			UseBayes:            true,
			UseSemantic:         true,
			UseProfile:          true,
			UseLLM:              false,
			MethodWeights: map[string]float64{
				"rules":    0.35,
				"bayes":    0.25,
				"semantic": 0.15,
				"profile":  0.10,
				"llm":      0.50,
			},
		},
		LLM: LLM{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 15,
			RequestsPerMin: 30,
		},
		Store: Store{
			Path: "~/.local/share/tidymark/history.db",
		},
		Batch: Batch{
			Workers: 4,
		},
		Rules: Rules{
			ProcessingOrder: []string{"AI", "Tech/Code"},
			MinScore:        0.05,
			Categories: map[string]RuleGroup{
				"AI": {
					Rules: []RuleSpec{
						{Match: "domain", Keywords: []string{"openai.com", "huggingface.co"}, Weight: 20},
						{Match: "title", Keywords: []string{"machine learning", "深度学习", "neural", "llm"}, Weight: 15},
					},
				},
				"Tech/Code": {
					Rules: []RuleSpec{
						{Match: "domain", Keywords: []string{"github.com", "stackoverflow.com"}, Weight: 20},
						{Match: "title", Keywords: []string{"programming", "code", "编程", "代码"}, Weight: 10},
					},
				},
			},
		},
		Taxonomy: Taxonomy{
			Subjects: []VocabEntry{
				{Preferred: "AI", Variants: []string{"ai/机器学习", "machine learning", "人工智能", "artificial intelligence"}},
				{Preferred: "Tech", Variants: []string{"tech/code", "技术", "技术/编程", "technology", "programming"}},
				{Preferred: "Productivity", Variants: []string{"效率", "tools", "工具", "productivity tools"}},
				{Preferred: "Learning", Variants: []string{"学习", "education", "课程", "tutorials"}},
				{Preferred: "Reading", Variants: []string{"稍后阅读", "read later", "articles"}},
			},
			ResourceTypes: []VocabEntry{
				{Preferred: "code_repository", Variants: []string{"repo", "repository", "代码仓库"}},
				{Preferred: "documentation", Variants: []string{"docs", "doc", "文档", "reference"}},
				{Preferred: "video", Variants: []string{"视频", "videos"}},
				{Preferred: "paper", Variants: []string{"academic_paper", "论文", "papers"}},
				{Preferred: "news", Variants: []string{"新闻", "article"}},
				{Preferred: "tool", Variants: []string{"online_tool", "在线工具", "tools"}},
				{Preferred: "webpage", Variants: []string{"网页", "page"}},
			},
		},
	}
}
