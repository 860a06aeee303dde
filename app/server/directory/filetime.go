package directory

import (
	"math"
	"strconv"
	"time"
)

// 1601-01-01 到 1970-01-01 之间的 100 纳秒间隔数
const fileTimeEpochOffset int64 = 116444736000000000

// FileTimeToTime 转换 Windows FILETIME （ 1601 年起的 100 纳秒间隔）。
// 0 与 math.MaxInt64 在 AD 中表示“从不”，返回 nil
func FileTimeToTime(raw string) *time.Time {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 || v == math.MaxInt64 {
		return nil
	}

	delta := v - fileTimeEpochOffset
	if delta > math.MaxInt64/100 || delta < math.MinInt64/100 {
		return nil
	}

	t := time.Unix(0, delta*100).UTC()
	return &t
}

func TimeToFileTime(t time.Time) string {
	return strconv.FormatInt(t.UnixNano()/100+fileTimeEpochOffset, 10)
}
