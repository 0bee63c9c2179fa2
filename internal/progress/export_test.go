package progress

var (
	Detect      = detect
	ForTerminal = terminalCapabilities
)
