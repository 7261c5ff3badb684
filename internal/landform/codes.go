// Package landform classifies geographic points against the GSI
// experimental landform-classification vector tiles. It selects the
// best-fitting feature for a point and maps its classification code to the
// published landform name.
package landform

import (
	"fmt"
	"strconv"
	"strings"
)

// Layer identifies which classification tile layer a feature came from.
type Layer int

const (
	// LayerNatural is the natural-landform layer (landformclassification1).
	LayerNatural Layer = iota
	// LayerArtificial is the artificial-landform layer (landformclassification2).
	LayerArtificial
)

// String implements fmt.Stringer.
func (l Layer) String() string {
	switch l {
	case LayerNatural:
		return "natural"
	case LayerArtificial:
		return "artificial"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// landformNames maps GSI landform classification codes to their published
// names. Codes cover both the legacy landform survey codes (5 digits) and
// the vector-tile codes (7 digits). The table is fixed; lookups never
// mutate it.
var landformNames = map[string]string{
	// 山地・丘陵地
	"10101":   "山地斜面",
	"11201":   "火砕丘",
	"11202":   "溶岩円頂丘",
	"11203":   "火口",
	"11204":   "溶岩流地形",
	"1010101": "山地",

	// 崖・段丘崖
	"10202":   "崖/壁岩",
	"10204":   "禿しゃ地・露岩",
	"2010201": "崖（段丘崖）",

	// 地すべり地形
	"10205": "地すべり（滑落崖）／地すべり（崩壊部）",
	"10206": "地すべり（移動体）／地すべり（堆積部）",

	// 台地・段丘
	"10301":   "高位面",
	"10302":   "上位面",
	"10303":   "中位面",
	"10304":   "下位面",
	"10305":   "完新世段丘／低位面",
	"10306":   "台地･段丘",
	"10307":   "対比困難な段丘",
	"10308":   "洪積台地",
	"10310":   "岩石台地",
	"10312":   "溶岩台地",
	"10314":   "更新世段丘",
	"10508":   "台地･段丘状の地形",
	"2010101": "段丘面",

	// 山麓堆積地形
	"10401":   "麓屑面",
	"10402":   "崖錐",
	"10403":   "土石流堆",
	"10404":   "土石流段丘",
	"10406":   "山麓堆積地形",
	"10407":   "崖錐・麓屑面・土石流堆",
	"3010101": "山麓堆積地形",

	// 扇状地
	"10501":   "扇状地",
	"10502":   "緩扇状地",
	"3020101": "扇状地",

	// 自然堤防
	"10503":   "自然堤防",
	"3040101": "微高地（自然堤防）",

	// 天井川等
	"10506": "天井川・天井川沿いの微高地／天井川沿微高地",
	"10507": "旧天井川の微高地",
	"10801": "天井川の部分",

	// 砂州・砂丘
	"10504":   "砂丘",
	"10505":   "砂（礫）堆・州",
	"10512":   "砂州・砂堆・砂丘",
	"3050101": "砂州・砂丘",

	// 凹地・浅い谷
	"10601":   "凹地・浅い谷",
	"2010301": "浅い谷",

	// 氾濫平野・海岸平野
	"10701":   "谷底平野・氾濫平野",
	"10702":   "海岸平野・三角州",
	"10705":   "湖岸平野・三角州",
	"3030101": "氾濫平野",

	// 後背低地・湿地
	"10703":   "後背低地",
	"10804":   "湿地／湿地・水草地",
	"3030201": "後背湿地",

	// 旧河道
	"10704":   "旧河道",
	"3040201": "旧河道（明瞭）",
	"3040202": "旧河道（不明瞭）",
	"3040301": "落堀",

	// 河川敷・浜
	"10802": "高水敷",
	"10803": "低水敷・浜",
	"10807": "低水敷・浜・潮汐平野",
	"10808": "高水敷・低水敷・浜",

	// 水部
	"10805":   "落堀",
	"10806":   "潮汐平野",
	"10901":   "水部",
	"10903":   "河川・水涯線及び水面",
	"5010201": "現河道・水面",

	// 旧水部
	"10904":   "旧水部",
	"5010301": "旧水部",

	// 切土地
	"11001":   "切土地／平坦化地",
	"11003":   "切土斜面",
	"11009":   "凹陥地",
	"11011":   "切土地",
	"4010301": "切土地",

	// 農耕平坦化地
	"11002": "農耕平坦化地",

	// 干拓地
	"11008":   "干拓地",
	"4010101": "干拓地",

	// 盛土地・埋立地
	"11004":   "盛土斜面",
	"11005":   "高い盛土地",
	"11006":   "盛土地",
	"11007":   "埋土地",
	"11014":   "盛土地・埋立地",
	"4010201": "盛土地・埋立地",

	// 改変工事中
	"11010": "改変工事中",
}

// CodeName resolves a classification code to its landform name.
// Unknown codes fall back to a formatted label: non-numeric values become
// "classification(<value>)", numeric ones "unclassified(<value>)".
func CodeName(code string) string {
	trimmed := strings.TrimSpace(code)
	if name, ok := landformNames[trimmed]; ok {
		return name
	}
	if _, err := strconv.Atoi(trimmed); err != nil {
		return fmt.Sprintf("classification(%s)", trimmed)
	}
	return fmt.Sprintf("unclassified(%s)", trimmed)
}

// CodeCount returns the number of entries in the fixed code table.
func CodeCount() int {
	return len(landformNames)
}
