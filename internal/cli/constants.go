package cli

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2

	// Number of arguments expected by the acquire command.
	acquireCommandArgs = 3

	// Number of arguments expected by commands addressing one stored asset.
	assetCommandArgs = 2
)
