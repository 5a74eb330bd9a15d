package command

// Code is a single-byte IR command code understood by the LED strip
// controller. Codes mirror the buttons on the controller's IR remote.
type Code byte

// IR command codes taken from the controller remote's code table.
const (
	CodeBrightnessDown Code = 0x04
	CodeBrightnessUp   Code = 0x05
	CodePowerOff       Code = 0x06
	CodePowerOn        Code = 0x07

	CodeColorGreen       Code = 0x08
	CodeColorRed         Code = 0x09
	CodeColorBlue        Code = 0x0A
	CodeColorWhite       Code = 0x0B
	CodeColorPeaGreen    Code = 0x0C
	CodeColorOrange      Code = 0x0D
	CodeColorDarkOrchid  Code = 0x0E
	CodeFuncFlash        Code = 0x0F
	CodeColorCyan        Code = 0x10
	CodeColorDarkYellow  Code = 0x11
	CodeColorMagenta     Code = 0x12
	CodeFuncFade         Code = 0x13
	CodeColorLightBlue   Code = 0x14
	CodeColorYellow      Code = 0x15
	CodeColorPink        Code = 0x16
	CodeFuncStrobe       Code = 0x17
	CodeColorSkyBlue     Code = 0x18
	CodeColorLightYellow Code = 0x19
	CodeColorPurple      Code = 0x1A
	CodeFuncSmooth       Code = 0x1B
)

// Category identifies one group of controllable attributes. Each category
// owns its own token table and maps onto one REST route.
type Category string

const (
	CategoryBrightness Category = "brightness"
	CategoryPower      Category = "power"
	CategoryFunction   Category = "function"
	CategoryColor      Category = "color"
)

// Categories lists all command categories in route order.
func Categories() []Category {
	return []Category{CategoryBrightness, CategoryPower, CategoryFunction, CategoryColor}
}

// entry pairs a token with its IR code. Tables are kept as ordered slices
// so documentation and the control panel render tokens in remote order.
type entry struct {
	token string
	code  Code
}

var tables = map[Category][]entry{
	CategoryBrightness: {
		{"up", CodeBrightnessUp},
		{"down", CodeBrightnessDown},
	},
	CategoryPower: {
		{"on", CodePowerOn},
		{"off", CodePowerOff},
	},
	CategoryFunction: {
		{"flash", CodeFuncFlash},
		{"strobe", CodeFuncStrobe},
		{"fade", CodeFuncFade},
		{"smooth", CodeFuncSmooth},
	},
	CategoryColor: {
		{"white", CodeColorWhite},
		{"red", CodeColorRed},
		{"orange", CodeColorOrange},
		{"dark-yellow", CodeColorDarkYellow},
		{"yellow", CodeColorYellow},
		{"light-yellow", CodeColorLightYellow},
		{"green", CodeColorGreen},
		{"pea-green", CodeColorPeaGreen},
		{"cyan", CodeColorCyan},
		{"light-blue", CodeColorLightBlue},
		{"sky-blue", CodeColorSkyBlue},
		{"blue", CodeColorBlue},
		{"dark-orchid", CodeColorDarkOrchid},
		{"purple", CodeColorPurple},
		{"magenta", CodeColorMagenta},
		{"pink", CodeColorPink},
	},
}

// Lookup resolves a token within a category to its IR code.
// Matching is exact and case-sensitive; unknown tokens never partially match.
func Lookup(cat Category, token string) (Code, bool) {
	for _, e := range tables[cat] {
		if e.token == token {
			return e.code, true
		}
	}
	return 0, false
}

// Tokens returns the valid tokens for a category in remote order.
func Tokens(cat Category) []string {
	entries := tables[cat]
	tokens := make([]string, len(entries))
	for i, e := range entries {
		tokens[i] = e.token
	}
	return tokens
}

// Valid reports whether cat is a known command category.
func Valid(cat Category) bool {
	_, ok := tables[cat]
	return ok
}
