package daterange

// Preset names a deterministically computed date range.
type Preset string

const (
	Today      Preset = "today"
	Yesterday  Preset = "yesterday"
	Last7Days  Preset = "last_7_days"
	Last30Days Preset = "last_30_days"
	ThisMonth  Preset = "this_month"
	LastMonth  Preset = "last_month"
	Custom     Preset = "custom"
)

// orderedPresets is also the detection order.
var orderedPresets = []Preset{Today, Yesterday, Last7Days, Last30Days, ThisMonth, LastMonth}

var presetLabels = map[Preset]string{
	Today:      "Today",
	Yesterday:  "Yesterday",
	Last7Days:  "Last 7 Days",
	Last30Days: "Last 30 Days",
	ThisMonth:  "This Month",
	LastMonth:  "Last Month",
	Custom:     "Custom Range",
}

// Presets returns every preset that has a canonical mapping, in detection order.
func Presets() []Preset {
	return append([]Preset(nil), orderedPresets...)
}

// ParsePreset accepts any known preset name, including custom.
func ParsePreset(name string) (Preset, bool) {
	p := Preset(name)
	if _, ok := presetLabels[p]; ok {
		return p, true
	}
	return "", false
}

// Label returns the display label. Unknown presets read as a custom range.
func (p Preset) Label() string {
	if label, ok := presetLabels[p]; ok {
		return label
	}
	return presetLabels[Custom]
}
