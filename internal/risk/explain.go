package risk

import "strings"

// Explain composes the human explanation for a scored risk point from its
// elevation and slope sub-scores plus hazard keywords present in the
// stored description. Sentences mirror the published assessment wording.
func Explain(elevScore, slopeScore float64, description string) string {
	var b strings.Builder

	hasScores := elevScore != 0 && slopeScore != 0
	switch {
	case !hasScores:
		b.WriteString(" 地形スコア情報が未登録のため、簡易的な評価です。")
	case elevScore >= 25 && slopeScore <= 10:
		b.WriteString(" 標高が低く、海や河川に近い地域で洪水リスクが高い傾向にあります。")
	case elevScore >= 18 && slopeScore <= 15:
		b.WriteString(" 標高がやや低く、浸水被害の可能性があります。")
	case slopeScore >= 20:
		b.WriteString(" 傾斜が急で、土砂災害の危険があります。")
	case slopeScore >= 12:
		b.WriteString(" やや傾斜地にあり、雨量が多いときは土砂崩れに注意が必要です。")
	case elevScore <= 13 && slopeScore <= 10:
		b.WriteString(" 高台に位置し、比較的安定した地形です。災害リスクは低めです。")
	default:
		b.WriteString(" 特定の災害リスクは中程度です。")
	}

	flood, landslide, tsunami := HazardFlags(description)
	if flood {
		b.WriteString(" 洪水ハザードマップ上では浸水可能性が示されています。")
	}
	if landslide {
		b.WriteString(" 土砂崩れ・斜面崩壊の危険も考えられます。")
	}
	if tsunami {
		b.WriteString(" 津波の可能性があり、注意が必要です。")
	}

	return b.String()
}

// HazardFlags extracts the per-hazard indicators from a stored risk
// description by keyword.
func HazardFlags(description string) (flood, landslide, tsunami bool) {
	flood = strings.Contains(description, "洪水")
	landslide = strings.Contains(description, "土砂") || strings.Contains(description, "崩壊")
	tsunami = strings.Contains(description, "津波")
	return flood, landslide, tsunami
}
