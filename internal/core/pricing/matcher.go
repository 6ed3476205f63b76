package pricing

import (
	"sort"
	"strings"
)

// MatchThreshold 商品比對最低接受分數
const MatchThreshold = 0.5

const (
	partialWeight    = 0.3
	minPartialLength = 4
	expansionFloor   = 0.5
)

// ProductMatcher 食材名稱與商品名稱的比對器
type ProductMatcher struct {
	tables   *Tables
	families []string
}

// NewProductMatcher 創建比對器
func NewProductMatcher(tables *Tables) *ProductMatcher {
	if tables == nil {
		tables = DefaultTables()
	}
	families := make([]string, 0, len(tables.KeywordExpansions))
	for k := range tables.KeywordExpansions {
		families = append(families, k)
	}
	sort.Strings(families)
	return &ProductMatcher{tables: tables, families: families}
}

// IsNonFood 商品名稱是否命中非食品黑名單
func (m *ProductMatcher) IsNonFood(candidate string) bool {
	_, hit := matchKeyword(NormalizeText(candidate), m.tables.NonFoodDenylist)
	return hit
}

// Score 計算比對分數，範圍 [0,1]，0 表示拒絕
func (m *ProductMatcher) Score(ingredient, candidate string) float64 {
	ing := NormalizeText(ingredient)
	cand := NormalizeText(candidate)
	if ing == "" || cand == "" {
		return 0
	}
	if m.IsNonFood(cand) {
		return 0
	}
	if ContainsPhrase(cand, ing) {
		return 1
	}

	score := wordScore(Tokenize(ing), Tokenize(cand))
	if score < expansionFloor && m.expansionHit(ing, cand) {
		score = expansionFloor
	}
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

// Matches 分數是否達到接受門檻
func (m *ProductMatcher) Matches(ingredient, candidate string) bool {
	return m.Score(ingredient, candidate) >= MatchThreshold
}

func wordScore(ingWords, candWords []string) float64 {
	if len(ingWords) == 0 {
		return 0
	}
	var exact, partial int
	for _, w := range ingWords {
		matched := false
		for _, c := range candWords {
			if w == c {
				exact++
				matched = true
				break
			}
		}
		if matched || len([]rune(w)) < minPartialLength {
			continue
		}
		for _, c := range candWords {
			if strings.HasPrefix(c, w) || strings.HasSuffix(c, w) {
				partial++
				break
			}
		}
	}
	n := float64(len(ingWords))
	return float64(exact)/n + partialWeight*float64(partial)/n
}

// expansionHit 食材屬於某個關鍵字家族，且商品命中該家族的任一詞
func (m *ProductMatcher) expansionHit(ing, cand string) bool {
	stemIng := stemPhrase(ing)
	stemCand := stemPhrase(cand)
	for _, family := range m.families {
		if !ContainsPhrase(stemIng, stemPhrase(family)) {
			continue
		}
		if ContainsPhrase(stemCand, stemPhrase(family)) {
			return true
		}
		for _, term := range m.tables.KeywordExpansions[family] {
			if ContainsPhrase(stemCand, stemPhrase(NormalizeText(term))) {
				return true
			}
		}
	}
	return false
}
