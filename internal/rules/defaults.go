package rules

// DefaultLevels returns the built-in 卷/章 level set used when a session
// is created without custom rules. Patterns cover the common Chinese
// web-novel headings plus English volume/chapter forms.
func DefaultLevels() []Level {
	return []Level{
		{
			Name: "卷",
			Rules: []string{
				`^第([零〇一二三四五六七八九十百千万两0-9]+)卷[\s:：-]*(.*)$ => 第\1卷 \2`,
				`^卷([零〇一二三四五六七八九十百千万两0-9]+)[\s:：-]*(.*)$ => 第\1卷 \2`,
				`^(?:VOL|Volume)\s+(\d+)[\s:：-]*(.*)$ => 第\1卷 \2`,
			},
		},
		{
			Name: "章",
			Rules: []string{
				`^第([零〇一二三四五六七八九十百千万两0-9]+)章[\s:：-]*(.*)$ => 第\1章 \2`,
				`^第([零〇一二三四五六七八九十百千万两0-9]+)节[\s:：-]*(.*)$ => 第\1节 \2`,
				`^([零〇一二三四五六七八九十百千万两]+)、\s*(.*)$ => 第\1章 \2`,
				`^(?:Chapter|CHAPTER)\s+([IVXLCDM\d]+)[\s:：-]*(.*)$ => Chapter \1 \2`,
			},
		},
	}
}
