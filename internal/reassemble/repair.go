package reassemble

import "regexp"

type repairRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// repairs run in order, each once per line.
var repairs = []repairRule{
	{regexp.MustCompile(regexp.QuoteMeta("Driver e vent")), "Driver event"},
	{regexp.MustCompile(`\[Schedule\s+Driver event`), "[ScheduledTasks] Driver event"},
	{regexp.MustCompile(`(Sustain:NO)\s+[A-Za-z]{1,3}$`), "${1}"},
	{regexp.MustCompile(`([)'"])\s+[A-Za-z]{1,3}$`), "${1}"},
}

// Repair fixes recurring decode corruptions in a logical line.
func Repair(line string) string {
	for _, rule := range repairs {
		line = rule.pattern.ReplaceAllString(line, rule.replacement)
	}
	return line
}

// RepairAll applies Repair to every line, preserving order.
func RepairAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Repair(line)
	}
	return out
}
