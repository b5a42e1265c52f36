// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bidwise/tender-engine/pkg/types"
)

// Confidence weights. Base depends on the pattern family; bonuses come
// from section placement, a Chinese-numeral crosscheck, and magnitude.
const (
	baseKeyword      = 50
	baseGeneric      = 10
	bonusSummary     = 40
	bonusSchedule    = 20
	bonusCrosscheck  = 30
	crosscheckWithin = 1.0
	magnitudeCap     = 5
)

// numberBody matches a digit literal with optional thousands separators
// and decimals (both ASCII and fullwidth commas appear in documents).
const numberBody = `([0-9][0-9,，]*(?:\.[0-9]+)?)`

var (
	// Keyword-anchored family: a price keyword, a short separator run
	// (colon, currency sign, prose), the literal, then optionally a
	// parenthesized Chinese-numeral spelling.
	keywordGap  = `[：:为（(\s]*(?:人民币)?[￥¥]?\s*`
	numeralTail = `(?:[^0-9零壹贰叁肆伍陆柒捌玖拾佰仟万亿〇一二两三四五六七八九十百千]{0,6}` +
		`([零壹贰叁肆伍陆柒捌玖拾佰仟万亿〇一二两三四五六七八九十百千]+[元圆][零壹贰叁肆伍陆柒捌玖角分整正]*))?`

	// Generic family: a currency sign before, or 元 after, the literal.
	genericSign   = regexp.MustCompile(`[￥¥]\s*` + numberBody)
	genericSuffix = regexp.MustCompile(numberBody + `\s*元`)
)

// Extractor scans page texts for price mentions and assigns each a
// composite confidence.
type Extractor struct {
	cfg     types.PriceConfig
	keyword *regexp.Regexp
}

func NewExtractor(cfg types.PriceConfig) *Extractor {
	def := types.DefaultPriceConfig()
	if len(cfg.PriceKeywords) == 0 {
		cfg.PriceKeywords = def.PriceKeywords
	}
	if len(cfg.TotalKeywords) == 0 {
		cfg.TotalKeywords = def.TotalKeywords
	}
	if len(cfg.SummaryAnchors) == 0 {
		cfg.SummaryAnchors = def.SummaryAnchors
	}
	if len(cfg.ScheduleAnchors) == 0 {
		cfg.ScheduleAnchors = def.ScheduleAnchors
	}
	if cfg.TotalPriceThreshold <= 0 {
		cfg.TotalPriceThreshold = def.TotalPriceThreshold
	}

	escaped := make([]string, len(cfg.PriceKeywords))
	for i, k := range cfg.PriceKeywords {
		escaped[i] = regexp.QuoteMeta(k)
	}
	kw := regexp.MustCompile(
		`(?:` + strings.Join(escaped, "|") + `)` + keywordGap + numberBody + numeralTail)

	return &Extractor{cfg: cfg, keyword: kw}
}

// Extract scans every page and returns candidates in page order.
// Unparseable literals are dropped without aborting the scan.
func (e *Extractor) Extract(pages []string) []types.PriceCandidate {
	var out []types.PriceCandidate
	for pageIdx, text := range pages {
		sectionBonus := e.sectionBonus(text)

		for _, m := range e.keyword.FindAllStringSubmatch(text, -1) {
			value, ok := parseAmount(m[1])
			if !ok {
				continue
			}
			conf := float64(baseKeyword) + sectionBonus + magnitudeBonus(value)
			if len(m) > 2 && m[2] != "" {
				if spelled, ok := ParseChineseNumeral(m[2]); ok &&
					math.Abs(spelled-value) < crosscheckWithin {
					conf += bonusCrosscheck
				}
			}
			out = append(out, types.PriceCandidate{
				Value:      value,
				Page:       pageIdx,
				Confidence: conf,
				Reason:     types.ReasonKeyword,
			})
		}

		for _, re := range []*regexp.Regexp{genericSign, genericSuffix} {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				value, ok := parseAmount(m[1])
				if !ok {
					continue
				}
				out = append(out, types.PriceCandidate{
					Value:      value,
					Page:       pageIdx,
					Confidence: float64(baseGeneric) + sectionBonus + magnitudeBonus(value),
					Reason:     types.ReasonGeneric,
				})
			}
		}
	}
	return out
}

// sectionBonus scores the page by which price section it belongs to. The
// bid-summary table is the most authoritative placement.
func (e *Extractor) sectionBonus(pageText string) float64 {
	for _, anchor := range e.cfg.SummaryAnchors {
		if strings.Contains(pageText, anchor) {
			return bonusSummary
		}
	}
	for _, anchor := range e.cfg.ScheduleAnchors {
		if strings.Contains(pageText, anchor) {
			return bonusSchedule
		}
	}
	return 0
}

func magnitudeBonus(value float64) float64 {
	bonus := value / 1e6
	if bonus > magnitudeCap {
		return magnitudeCap
	}
	return bonus
}

// parseAmount strips separator commas and parses the literal.
func parseAmount(literal string) (float64, bool) {
	literal = strings.NewReplacer(",", "", "，", "").Replace(literal)
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
