package types

import "time"

// TableConfig holds settings for the table segmentation stage.
type TableConfig struct {
	// RequiredHeaderLabels must all appear (by containment) in a logical
	// table's header for the table to be kept. Defaults to the evaluation
	// item and evaluation standard labels.
	RequiredHeaderLabels []string `json:"required_header_labels" yaml:"required_header_labels"`

	// HeaderSimilarityThreshold is the minimum header similarity for a
	// cross-page merge (default 0.6).
	HeaderSimilarityThreshold float64 `json:"header_similarity_threshold" yaml:"header_similarity_threshold"`

	// DensitySimilarityThreshold is the minimum content-density similarity
	// for a cross-page merge (default 0.7).
	DensitySimilarityThreshold float64 `json:"density_similarity_threshold" yaml:"density_similarity_threshold"`
}

// RuleConfig holds settings for rule-row parsing and the fallback chain.
type RuleConfig struct {
	// PriceKeywords classify a row as the price criterion when any appears
	// in the item name or evaluation standard.
	PriceKeywords []string `json:"price_keywords" yaml:"price_keywords"`

	// SectionAnchors locate the evaluation-methodology section during the
	// regex fallback scan.
	SectionAnchors []string `json:"section_anchors" yaml:"section_anchors"`

	// SectionTerminators bound the scanned section (contract/appendix
	// markers, next-chapter headings).
	SectionTerminators []string `json:"section_terminators" yaml:"section_terminators"`

	// MinSectionLen is the minimum extracted span in characters before the
	// scan window is progressively widened (default 500).
	MinSectionLen int `json:"min_section_len" yaml:"min_section_len"`

	// OracleExcerptLen bounds the excerpt sent to the oracle during
	// fallback extraction (default 15000 characters).
	OracleExcerptLen int `json:"oracle_excerpt_len" yaml:"oracle_excerpt_len"`
}

// PriceConfig holds settings for price candidate extraction and selection.
type PriceConfig struct {
	// PriceKeywords anchor the keyword pattern family during page scanning.
	PriceKeywords []string `json:"price_keywords" yaml:"price_keywords"`

	// TotalKeywords feed the total-price window predicate during selection.
	TotalKeywords []string `json:"total_keywords" yaml:"total_keywords"`

	// SummaryAnchors identify bid-summary pages (highest section bonus).
	SummaryAnchors []string `json:"summary_anchors" yaml:"summary_anchors"`

	// ScheduleAnchors identify price-schedule pages (lower section bonus).
	ScheduleAnchors []string `json:"schedule_anchors" yaml:"schedule_anchors"`

	// TotalPriceThreshold is the magnitude prior: a candidate above it is
	// presumed to be a grand total (default 10000). Tunable, not load
	// bearing.
	TotalPriceThreshold float64 `json:"total_price_threshold" yaml:"total_price_threshold"`
}

// OracleConfig holds settings for the text-completion oracle client.
type OracleConfig struct {
	// Host is the oracle service base URL (e.g. "http://localhost:11434").
	Host string `json:"host" yaml:"host"`

	// Model is the completion model identifier.
	Model string `json:"model" yaml:"model"`

	// Timeout is the per-request timeout (default 10m; rule extraction
	// prompts are large and local models are slow).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the evaluation store.
type StoreConfig struct {
	// Path is the SQLite database file (default "tender-eval.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Table  TableConfig  `json:"table" yaml:"table"`
	Rules  RuleConfig   `json:"rules" yaml:"rules"`
	Price  PriceConfig  `json:"price" yaml:"price"`
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`
	Store  StoreConfig  `json:"store" yaml:"store"`
}

// DefaultTableConfig returns the segmentation defaults used by Chinese
// tender evaluation-methodology tables.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		RequiredHeaderLabels:       []string{"评价项目", "评价标准"},
		HeaderSimilarityThreshold:  0.6,
		DensitySimilarityThreshold: 0.7,
	}
}

// DefaultRuleConfig returns the rule-extraction defaults.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		PriceKeywords: []string{"价格", "报价", "投标报价", "金额", "费用"},
		SectionAnchors: []string{
			"评标办法", "评分标准", "评审标准", "评价标准", "评分细则",
			"评标细则", "评价项目", "评分方法", "评审方法", "综合评分",
		},
		SectionTerminators: []string{
			"合同", "附件", "附录", "投标文件格式", "附表",
			"投标人须知", "投标保证金", "投标有效期", "开标", "中标",
		},
		MinSectionLen:    500,
		OracleExcerptLen: 15000,
	}
}

// DefaultPriceConfig returns the price-extraction defaults.
func DefaultPriceConfig() PriceConfig {
	return PriceConfig{
		PriceKeywords:       []string{"投标报价", "投标总价", "报价", "总价", "合计", "总计", "小写金额", "金额"},
		TotalKeywords:       []string{"总价", "总报价", "投标报价", "合计", "总计"},
		SummaryAnchors:      []string{"投标一览表", "开标一览表"},
		ScheduleAnchors:     []string{"价格文件", "报价部分"},
		TotalPriceThreshold: 10000,
	}
}

// DefaultOracleConfig returns the oracle client defaults.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		Host:       "http://localhost:11434",
		Model:      "qwen3:30b-a3b-instruct-2507-q4_K_M",
		Timeout:    10 * time.Minute,
		MaxRetries: 3,
	}
}

// DefaultPipelineConfig groups every stage's defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Table:  DefaultTableConfig(),
		Rules:  DefaultRuleConfig(),
		Price:  DefaultPriceConfig(),
		Oracle: DefaultOracleConfig(),
		Store:  StoreConfig{Path: "tender-eval.db"},
	}
}
