package datasets

import "strings"

// Regions maps province-level names, with or without their administrative
// suffix and in pinyin, to the short name used in reports.
var Regions = map[string]string{
	"北京": "北京", "beijing": "北京",
	"天津": "天津", "tianjin": "天津",
	"上海": "上海", "shanghai": "上海",
	"重庆": "重庆", "chongqing": "重庆",
	"河北": "河北", "hebei": "河北",
	"山西": "山西", "shanxi": "山西",
	"辽宁": "辽宁", "liaoning": "辽宁",
	"吉林": "吉林", "jilin": "吉林",
	"黑龙江": "黑龙江", "heilongjiang": "黑龙江",
	"江苏": "江苏", "jiangsu": "江苏",
	"浙江": "浙江", "zhejiang": "浙江",
	"安徽": "安徽", "anhui": "安徽",
	"福建": "福建", "fujian": "福建",
	"江西": "江西", "jiangxi": "江西",
	"山东": "山东", "shandong": "山东",
	"河南": "河南", "henan": "河南",
	"湖北": "湖北", "hubei": "湖北",
	"湖南": "湖南", "hunan": "湖南",
	"广东": "广东", "guangdong": "广东",
	"海南": "海南", "hainan": "海南",
	"四川": "四川", "sichuan": "四川",
	"贵州": "贵州", "guizhou": "贵州",
	"云南": "云南", "yunnan": "云南",
	"陕西": "陕西", "shaanxi": "陕西",
	"甘肃": "甘肃", "gansu": "甘肃",
	"青海": "青海", "qinghai": "青海",
	"内蒙古": "内蒙古", "inner mongolia": "内蒙古",
	"广西": "广西", "guangxi": "广西",
	"西藏": "西藏", "tibet": "西藏",
	"宁夏": "宁夏", "ningxia": "宁夏",
	"新疆": "新疆", "xinjiang": "新疆",
	"香港": "香港", "hong kong": "香港",
	"澳门": "澳门", "macau": "澳门",
	"台湾": "台湾", "taiwan": "台湾",
}

var regionSuffixes = []string{
	"维吾尔自治区", "壮族自治区", "回族自治区", "自治区",
	"特别行政区", "省", "市",
	" province", " city",
}

// NormalizeRegion converts a province name to its short form.
// If the input is not recognized, returns it trimmed.
func NormalizeRegion(s string) string {
	s = strings.TrimSpace(s)
	key := strings.ToLower(s)

	if short, ok := Regions[key]; ok {
		return short
	}

	for _, suffix := range regionSuffixes {
		if trimmed, ok := strings.CutSuffix(key, suffix); ok {
			if short, ok := Regions[strings.TrimSpace(trimmed)]; ok {
				return short
			}
		}
	}

	return s
}
