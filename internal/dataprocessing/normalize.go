package dataprocessing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fishintel/pkg/contracts/domain"
)

// commodityStripSet lists the punctuation removed from commodity names after
// NFKC folding, in both width forms.
const commodityStripSet = "()（）[]【】、。・/／　"

// foreignIndicators mark an origin string as import/overseas
var foreignIndicators = []string{
	"外国", "輸入", "海外", "アメリカ", "中国", "ロシア", "ノルウェー", "チリ", "インド", "タイ", "ベトナム",
}

// irregularPrefectures maps names whose official form is not "<name>県"
var irregularPrefectures = map[string]string{
	"東京":  "東京都",
	"大阪":  "大阪府",
	"京都":  "京都府",
	"北海道": "北海道",
}

// prefectureSuffixes are the official prefecture-class suffixes
var prefectureSuffixes = []string{"都", "道", "府", "県"}

// standardPrefectures are the 43 prefectures written as "<name>県"
var standardPrefectures = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"青森", "岩手", "宮城", "秋田", "山形", "福島", "茨城", "栃木", "群馬", "埼玉", "千葉", "神奈川",
		"新潟", "富山", "石川", "福井", "山梨", "長野", "岐阜", "静岡", "愛知", "三重", "滋賀", "兵庫",
		"奈良", "和歌山", "鳥取", "島根", "岡山", "広島", "山口", "徳島", "香川", "愛媛", "高知", "福岡",
		"佐賀", "長崎", "熊本", "大分", "宮崎", "鹿児島", "沖縄",
	} {
		standardPrefectures[name] = struct{}{}
	}
}

// katakanaToHiragana shifts the katakana syllables ァ..ヶ and the iteration
// marks ヽヾ onto their hiragana counterparts
func katakanaToHiragana(r rune) rune {
	switch {
	case r >= 'ァ' && r <= 'ヶ':
		return r - 0x60
	case r == 'ヽ' || r == 'ヾ':
		return r - 0x60
	}
	return r
}

func isCommodityNoise(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(commodityStripSet, r)
}

// NormalizeCommodityName maps a raw commodity label to its canonical key.
// It folds width variants (NFKC), drops whitespace and bracket/separator
// punctuation and writes katakana as hiragana, so "マグロ", "ﾏｸﾞﾛ" and
// "まぐろ（生）" style variants collapse onto one key. A voicing mark left
// next to its base once punctuation is removed is recomposed (NFC). The
// function is total and idempotent.
func NormalizeCommodityName(raw string) string {
	if raw == "" {
		return ""
	}
	t := transform.Chain(
		norm.NFKC,
		runes.Remove(runes.Predicate(isCommodityNoise)),
		runes.Map(katakanaToHiragana),
		norm.NFC,
	)
	out, _, err := transform.String(t, raw)
	if err != nil {
		return norm.NFC.String(strings.Map(func(r rune) rune {
			if isCommodityNoise(r) {
				return -1
			}
			return katakanaToHiragana(r)
		}, norm.NFKC.String(raw)))
	}
	return out
}

// NormalizePrefecture maps a raw origin string to a canonical prefecture name.
// Import indicators collapse to domain.ForeignOrigin. Unrecognized strings are
// returned trimmed but otherwise unchanged.
func NormalizePrefecture(raw string) string {
	name := strings.TrimSpace(norm.NFKC.String(raw))
	if name == "" {
		return ""
	}

	for _, marker := range foreignIndicators {
		if strings.Contains(name, marker) {
			return domain.ForeignOrigin
		}
	}

	if official, ok := irregularPrefectures[name]; ok {
		return official
	}

	for _, suffix := range prefectureSuffixes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}

	if _, ok := standardPrefectures[name]; ok {
		return name + "県"
	}

	return name
}
