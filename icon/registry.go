package icon

// Icon identifies a single UI symbol in the registry.
type Icon int

const (
	Progress Icon = iota
	Success
	Fail
	Question
	Watched
	Replay
	Swipe
)

// icons maps every registered symbol to its per-variant representations.
var icons = map[Icon]*iconDef{
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "@",
		kaomoji: "(-_-)zzz",
		squares: "▱▱▱",
	},
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "+",
		kaomoji: "(^_^)",
		squares: "▰▰▰",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "x",
		kaomoji: "(╯°□°)╯",
		squares: "▰▱▱",
	},
	Question: {
		emoji:   "❓",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・・?)",
		squares: "▱▰▱",
	},
	Watched: {
		emoji:   "👀",
		nerd:    "",
		plain:   "*",
		kaomoji: "(o_o)",
		squares: "▰▰▱",
	},
	Replay: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "<",
		kaomoji: "(^_~)",
		squares: "▱▱▰",
	},
	Swipe: {
		emoji:   "👆",
		nerd:    "",
		plain:   "^",
		kaomoji: "(ノ^_^)ノ",
		squares: "▰▱▰",
	},
}
