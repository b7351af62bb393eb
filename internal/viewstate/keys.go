package viewstate

type Command int

const (
	CmdNone Command = iota
	CmdNext
	CmdPrev
	CmdOpen
	CmdSubmit
	CmdRefresh
	CmdAdd
	CmdSearch
	CmdEscape
	CmdToggleUnreadOnly
	CmdToggleRead
	CmdStar
	CmdRemoveFeed
	CmdFocusNext
	CmdShrinkLeft
	CmdGrowLeft
	CmdShrinkMiddle
	CmdGrowMiddle
	CmdQuit
)

// ResizeStep is how many columns one divider key press moves.
const ResizeStep = 2

var keyCommands = map[string]Command{
	"j":      CmdNext,
	"down":   CmdNext,
	"k":      CmdPrev,
	"up":     CmdPrev,
	"o":      CmdOpen,
	"enter":  CmdOpen,
	"r":      CmdRefresh,
	"a":      CmdAdd,
	"/":      CmdSearch,
	"f":      CmdSearch,
	"esc":    CmdEscape,
	"u":      CmdToggleUnreadOnly,
	"m":      CmdToggleRead,
	"s":      CmdStar,
	"d":      CmdRemoveFeed,
	"tab":    CmdFocusNext,
	"[":      CmdShrinkLeft,
	"]":      CmdGrowLeft,
	"{":      CmdShrinkMiddle,
	"}":      CmdGrowMiddle,
	"q":      CmdQuit,
	"ctrl+c": CmdQuit,
}

// KeyCommand maps a key name to a command. While a text input has focus only
// escape, enter and ctrl+c are handled; every other key belongs to the input.
func KeyCommand(key string, inputFocused bool) Command {
	if inputFocused {
		switch key {
		case "esc":
			return CmdEscape
		case "enter":
			return CmdSubmit
		case "ctrl+c":
			return CmdQuit
		}
		return CmdNone
	}
	return keyCommands[key]
}
