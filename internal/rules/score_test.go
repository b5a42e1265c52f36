// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"parenthesized", "技术方案（30分）", 30},
		{"ascii parens", "技术方案(15.5分)", 15.5},
		{"bare suffix", "售后服务 10分", 10},
		{"max prefix", "满分20", 20},
		{"parenthesized wins over bare", "方案（10分）另计5分", 10},
		{"no score", "技术方案", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractScore(tt.text))
		})
	}
}

func TestPlausibleScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  bool
	}{
		{"whole", 40, true},
		{"one decimal", 12.5, true},
		{"upper bound", 100, true},
		{"zero", 0, false},
		{"negative", -5, false},
		{"over budget", 100.5, false},
		{"two decimals", 3.75, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlausibleScore(tt.score))
		})
	}
}

func TestCleanCriteriaName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading numbering", "1. 技术方案", "技术方案"},
		{"parenthesized numbering", "(2) 售后服务", "售后服务"},
		{"trailing score", "技术方案（30分）", "技术方案"},
		{"decoration", "★资质要求", "资质要求"},
		{"whitespace", "  技术  方案 ", "技术 方案"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCriteriaName(tt.in))
		})
	}
}

func TestSimilarCriteria(t *testing.T) {
	assert.True(t, SimilarCriteria("技术方案", "技术方案"))
	assert.True(t, SimilarCriteria("1. 技术方案（30分）", "技术方案"))
	assert.True(t, SimilarCriteria("技术方案完整性", "技术方案"))
	assert.False(t, SimilarCriteria("技术方案", "售后服务"))
	assert.False(t, SimilarCriteria("", "技术方案"))
}
