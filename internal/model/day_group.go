package model

import "fmt"

// Weekday 星期（1=周一 … 7=周日，与数据库 day 列一致）
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Valid 检查星期取值是否在 1-7 范围内
func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

var weekdayNames = [...]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d-1]
}

// DayGroup 时间段的周频家族（封闭枚举）
//
// 双周家族各绑定一对固定搭档日，单周家族绑定单日：
//
//	twice_a → 周一 + 周三
//	twice_b → 周二 + 周四
//	once_c  → 周五
//	once_d  → 周六
//	once_e  → 周日
//
// 显式配对表取代历史实现中的字符串匹配，家族判断只能经由本类型的方法。
type DayGroup string

const (
	DayGroupTwiceA DayGroup = "twice_a"
	DayGroupTwiceB DayGroup = "twice_b"
	DayGroupOnceC  DayGroup = "once_c"
	DayGroupOnceD  DayGroup = "once_d"
	DayGroupOnceE  DayGroup = "once_e"
)

// dayGroupDays 家族 → 所属日 显式邻接表
var dayGroupDays = map[DayGroup][]Weekday{
	DayGroupTwiceA: {Monday, Wednesday},
	DayGroupTwiceB: {Tuesday, Thursday},
	DayGroupOnceC:  {Friday},
	DayGroupOnceD:  {Saturday},
	DayGroupOnceE:  {Sunday},
}

// Valid 检查是否为已知家族标签
func (g DayGroup) Valid() bool {
	_, ok := dayGroupDays[g]
	return ok
}

// TwiceWeekly 是否为双周家族
func (g DayGroup) TwiceWeekly() bool {
	return g == DayGroupTwiceA || g == DayGroupTwiceB
}

// Days 返回家族绑定的星期（双周家族两天，单周家族一天）
func (g DayGroup) Days() []Weekday {
	days := dayGroupDays[g]
	out := make([]Weekday, len(days))
	copy(out, days)
	return out
}

// Contains 判断星期是否属于该家族
func (g DayGroup) Contains(d Weekday) bool {
	for _, day := range dayGroupDays[g] {
		if day == d {
			return true
		}
	}
	return false
}

// PartnerDay 返回双周家族中给定日的搭档日
// 单周家族或不属于该家族的日返回 false
func (g DayGroup) PartnerDay(d Weekday) (Weekday, bool) {
	if !g.TwiceWeekly() {
		return 0, false
	}
	days := dayGroupDays[g]
	switch d {
	case days[0]:
		return days[1], true
	case days[1]:
		return days[0], true
	}
	return 0, false
}
